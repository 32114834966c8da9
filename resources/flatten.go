package resources

import (
	"fmt"
	"strings"

	"github.com/storymarket/go-storymarket/core"
)

// fieldKind is the declared wire type of a flattened field. It selects the
// serializer; the runtime type of the value is never inspected to pick one.
type fieldKind int

const (
	plainField fieldKind = iota
	tagsField
	userField
	orgField
	categoryField
)

type flattenField struct {
	name string
	kind fieldKind
}

// baseFlattenFields are written for every content kind, in this order.
var baseFlattenFields = []flattenField{
	{RelCategory, categoryField},
	{RelAuthor, userField},
	{"title", plainField},
	{RelOrg, orgField},
	{"tags", tagsField},
}

// flatten renders a resource into the flat mapping accepted by POST and PUT.
// Missing fields are skipped and only truthy values are written, so an empty
// value cannot clear a field through this path.
func flatten(res Content, fields []flattenField) (core.Params, error) {
	c := res.content()
	flattened := core.Params{}
	for _, field := range fields {
		value, err := serializeField(c, res, field)
		if err != nil {
			if core.IsAttributeNotFoundErr(err) {
				continue
			}
			return nil, fmt.Errorf("flatten %s: %w", field.name, err)
		}
		if core.IsTruthy(value) {
			flattened[field.name] = value
		}
	}
	return flattened, nil
}

func serializeField(c *ContentResource, res Content, field flattenField) (any, error) {
	switch field.kind {
	case tagsField:
		return c.Tags.String(), nil
	case userField, orgField, categoryField:
		value, err := c.slot(field.name)
		if err != nil {
			return nil, err
		}
		if ref, ok := value.(string); ok {
			return ref, nil
		}
		return serializeRelation(field, value)
	default:
		if v, ok := core.FieldByJSONName(res, field.name); ok {
			return v, nil
		}
		if v, ok := c.Extra[field.name]; ok {
			return v, nil
		}
		return nil, &core.AttributeNotFoundError{Resource: c.kindName(), Attribute: field.name}
	}
}

func serializeRelation(field flattenField, value any) (any, error) {
	switch field.kind {
	case userField:
		user, err := newUser(value)
		if err != nil {
			return nil, err
		}
		return user.Username, nil
	case orgField:
		org, err := newRelated[Org](nil, value)
		if err != nil {
			return nil, err
		}
		if org.ID == "" {
			return nil, &core.MissingFieldError{Type: "Org", Field: "id"}
		}
		return org.Reference(), nil
	case categoryField:
		category, err := newRelated[Category](nil, value)
		if err != nil {
			return nil, err
		}
		if category.ID == "" {
			return nil, &core.MissingFieldError{Type: "Category", Field: "id"}
		}
		return category.Reference(), nil
	}
	return value, nil
}

// normalizeFlat prepares a caller-supplied flat mapping. Declared fields given
// as typed values are rewritten the way flatten would; everything else, falsy
// values included, is sent as is.
func normalizeFlat(data map[string]any, fields []flattenField) core.Params {
	out := make(core.Params, len(data))
	for k, v := range data {
		out[k] = v
	}
	for _, field := range fields {
		value, ok := out[field.name]
		if !ok {
			continue
		}
		switch field.kind {
		case tagsField:
			switch tags := value.(type) {
			case []string:
				out[field.name] = strings.Join(tags, ", ")
			case Tags:
				out[field.name] = tags.String()
			case []any:
				parts := make([]string, len(tags))
				for i, tag := range tags {
					parts[i] = fmt.Sprint(tag)
				}
				out[field.name] = strings.Join(parts, ", ")
			}
		case userField:
			if user, ok := value.(*User); ok && user != nil {
				out[field.name] = user.Username
			}
		case orgField:
			if org, ok := value.(*Org); ok && org != nil {
				out[field.name] = org.Reference()
			}
		case categoryField:
			if category, ok := value.(*Category); ok && category != nil {
				out[field.name] = category.Reference()
			}
		}
	}
	return out
}
