package cli

import (
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/storymarket/go-storymarket/core"
	"github.com/storymarket/go-storymarket/resources"
)

const (
	formatTable   = "table"
	formatJSON    = "json"
	formatMsgpack = "msgpack"
)

// render writes value to w in the requested format. msgpack output is raw
// bytes meant for piping into another program.
func render(w io.Writer, format string, value core.Renderable) error {
	switch format {
	case formatTable, "":
		_, err := fmt.Fprintln(w, value.PrettyTable())
		return err
	case formatJSON:
		_, err := fmt.Fprintln(w, value.PrettyJson("  "))
		return err
	case formatMsgpack:
		data, err := msgpack.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode msgpack: %w", err)
		}
		_, err = w.Write(data)
		return err
	}
	return fmt.Errorf("unknown output format %q (want %s, %s or %s)", format, formatTable, formatJSON, formatMsgpack)
}

func contentRecords(items []resources.Content) core.RecordSet {
	out := make(core.RecordSet, len(items))
	for i, item := range items {
		out[i] = item.Record()
	}
	return out
}

// relationRecord collects the relations of res that are set, keyed by
// relation name and rendered with their String form.
func relationRecord(res resources.Content) (core.Record, error) {
	rec := core.Record{core.ResourceTypeKey: "Relations"}
	for _, name := range resources.RelationNames {
		value, err := res.Attr(name)
		if err != nil {
			if core.IsAttributeNotFoundErr(err) {
				continue
			}
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		rec[name] = fmt.Sprint(value)
	}
	return rec, nil
}
