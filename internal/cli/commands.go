// Package cli implements the storymarket command line tool.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/storymarket/go-storymarket/core"
	"github.com/storymarket/go-storymarket/resources"
	"github.com/storymarket/go-storymarket/rest"
)

type app struct {
	v      *viper.Viper
	config *core.Config
	client *rest.Storymarket
}

// NewRootCommand builds the storymarket command tree. Settings come from
// flags, STORYMARKET_* env vars, .env and ~/.storymarket.yaml, in that order.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "storymarket",
		Short:         "Browse and edit Storymarket content",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return readConfigFile(a.v)
		},
	}
	if err := bindFlags(root, a.v); err != nil {
		panic(err)
	}

	root.AddCommand(
		a.kindsCmd(),
		a.listCmd(),
		a.getCmd(),
		a.relationsCmd(),
		a.createCmd(),
		a.updateCmd(),
		a.deleteCmd(),
		a.uploadCmd(),
		a.versionCmd(),
	)
	return root
}

// storymarket builds the client on first use.
func (a *app) storymarket() (client *rest.Storymarket, err error) {
	if a.client != nil {
		return a.client, nil
	}
	if a.config, err = loadConfig(a.v); err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("invalid configuration: %v", r)
		}
	}()
	if a.client, err = rest.NewStorymarket(a.config); err != nil {
		return nil, err
	}
	return a.client, nil
}

func (a *app) kind(name string) (resources.ContentKind, error) {
	client, err := a.storymarket()
	if err != nil {
		return nil, err
	}
	kind, ok := client.Kinds()[name]
	if !ok {
		return nil, fmt.Errorf("unknown content kind %q (want one of %s)", name, strings.Join(client.KindNames(), ", "))
	}
	return kind, nil
}

func (a *app) output() string {
	return a.v.GetString(keyOutput)
}

func (a *app) kindsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List content kinds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.storymarket()
			if err != nil {
				return err
			}
			var rows core.RecordSet
			for _, name := range client.KindNames() {
				kind := client.Kinds()[name]
				rows = append(rows, core.Record{
					core.ResourceTypeKey: "Kind",
					"name":               kind.GetResourceType(),
					"urlbit":             kind.Urlbit(),
					"binary":             kind.IsBinary(),
					"fields":             strings.Join(kind.FlattenFields(), ","),
				})
			}
			return render(cmd.OutOrStdout(), a.output(), rows)
		},
	}
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list KIND",
		Short: "List content of one kind",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := a.kind(args[0])
			if err != nil {
				return err
			}
			items, err := kind.ListContentWithContext(cmd.Context())
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), a.output(), contentRecords(items))
		},
	}
}

func (a *app) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get KIND ID",
		Short: "Show one content object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := a.kind(args[0])
			if err != nil {
				return err
			}
			item, err := kind.GetContentWithContext(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), a.output(), item.Record())
		},
	}
}

func (a *app) relationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "relations KIND ID",
		Short: "Show author, category, org and schemes of a content object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := a.kind(args[0])
			if err != nil {
				return err
			}
			item, err := kind.GetContentWithContext(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			rec, err := relationRecord(item)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), a.output(), rec)
		},
	}
}

func (a *app) createCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create KIND",
		Short: "Create a content object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := a.kind(args[0])
			if err != nil {
				return err
			}
			params, err := createParams(cmd)
			if err != nil {
				return err
			}
			created, err := kind.CreateContentWithContext(cmd.Context(), params)
			if err != nil {
				return err
			}
			Success.Fprintf(cmd.ErrOrStderr(), "created %s\n", created)
			return render(cmd.OutOrStdout(), a.output(), created.Record())
		},
	}
	flags := cmd.Flags()
	flags.String("title", "", "title")
	flags.StringSlice("tag", nil, "tag (repeatable)")
	flags.String("author", "", "author username")
	flags.String("org", "", "org id or reference")
	flags.String("category", "", "sub category id or reference")
	flags.Float64("duration", 0, "duration in seconds (audio, video)")
	flags.String("caption", "", "caption (photo)")
	flags.String("content", "", "story body (text)")
	return cmd
}

// createParams builds a flat mapping from the flags that were set.
// Bare org and category ids are turned into references.
func createParams(cmd *cobra.Command) (core.Params, error) {
	flags := cmd.Flags()
	params := core.Params{}
	for _, name := range []string{"title", "author", "caption", "content"} {
		if flags.Changed(name) {
			value, err := flags.GetString(name)
			if err != nil {
				return nil, err
			}
			params[name] = value
		}
	}
	if flags.Changed("tag") {
		tags, err := flags.GetStringSlice("tag")
		if err != nil {
			return nil, err
		}
		params["tags"] = tags
	}
	if flags.Changed("duration") {
		duration, err := flags.GetFloat64("duration")
		if err != nil {
			return nil, err
		}
		params["duration"] = duration
	}
	if flags.Changed("org") {
		org, _ := flags.GetString("org")
		params["org"] = &resources.Org{RelatedResource: resources.RelatedResource{ID: referenceID(org)}}
	}
	if flags.Changed("category") {
		category, _ := flags.GetString("category")
		params["category"] = &resources.Category{RelatedResource: resources.RelatedResource{ID: referenceID(category)}}
	}
	return params, nil
}

func referenceID(ref string) string {
	trimmed := strings.Trim(ref, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}

func (a *app) updateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update KIND ID --field key=value...",
		Short: "Send a partial update",
		Long: "Send the given fields as a flat update. Values that parse as JSON " +
			"(numbers, true/false, quoted strings) are sent decoded, anything else as a string. " +
			"An empty value clears the field.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := a.kind(args[0])
			if err != nil {
				return err
			}
			fields, _ := cmd.Flags().GetStringArray("field")
			params, err := parseFields(fields)
			if err != nil {
				return err
			}
			if len(params) == 0 {
				return fmt.Errorf("nothing to update: pass at least one --field")
			}
			if err = kind.UpdateWithContext(cmd.Context(), args[1], params); err != nil {
				return err
			}
			Success.Fprintf(cmd.ErrOrStderr(), "updated %s %s\n", kind.GetResourceType(), args[1])
			return nil
		},
	}
	cmd.Flags().StringArray("field", nil, "key=value (repeatable)")
	return cmd
}

func parseFields(fields []string) (core.Params, error) {
	params := core.Params{}
	for _, field := range fields {
		key, raw, ok := strings.Cut(field, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("bad field %q: want key=value", field)
		}
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		params[key] = value
	}
	return params, nil
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete KIND ID",
		Short: "Delete a content object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := a.kind(args[0])
			if err != nil {
				return err
			}
			if err = kind.DeleteWithContext(cmd.Context(), args[1]); err != nil {
				return err
			}
			Success.Fprintf(cmd.ErrOrStderr(), "deleted %s %s\n", kind.GetResourceType(), args[1])
			return nil
		},
	}
}

func (a *app) uploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload KIND ID FILE",
		Short: "Upload the binary payload of an audio, data, photo or video object",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := a.kind(args[0])
			if err != nil {
				return err
			}
			blobKind, ok := kind.(resources.BlobKind)
			if !ok {
				return fmt.Errorf("%s content has no binary payload", kind.GetResourceType())
			}
			file, err := os.Open(args[2])
			if err != nil {
				return err
			}
			defer file.Close()

			if a.config.BlobUploader == nil {
				a.config.BlobUploader = &PutUploader{}
			}
			if err = blobKind.UploadBlobWithContext(cmd.Context(), args[1], file); err != nil {
				return err
			}
			Success.Fprintf(cmd.ErrOrStderr(), "uploaded %s to %s %s\n", args[2], kind.GetResourceType(), args[1])
			return nil
		},
	}
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print client and API versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			Title.Fprint(out, "client ")
			fmt.Fprintln(out, core.ClientVersion())
			Title.Fprint(out, "api    ")
			fmt.Fprintln(out, a.v.GetString(keyApiVersion))
			return nil
		},
	}
}
