package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/academia/apiclient"
	"github.com/trezcool/academia/resourcelist"
)

type ops uint8

const (
	opCreate ops = 1 << iota
	opUpdate
	opDelete

	opCRUD = opCreate | opUpdate | opDelete
)

// slotFlag binds a filter slot to a command line flag.
type slotFlag struct {
	flag    string // --stream
	key     string // stream_id
	label   string
	options func(c *apiclient.Client) resourcelist.OptionsFunc
}

// kind describes the commands of one entity kind.
type kind[E resourcelist.Entity, D any] struct {
	use        string
	noun       string
	aliases    []string
	collection func(c *apiclient.Client) resourcelist.Collection[E, D]
	slots      []slotFlag
	header     table.Row
	row        func(E) table.Row
	ops        ops
}

func (k kind[E, D]) can(op ops) bool { return k.ops&op != 0 }

func newKindCommand[E resourcelist.Entity, D any](cli *commandLine, k kind[E, D]) *cobra.Command {
	cmd := &cobra.Command{
		Use:     k.use,
		Aliases: k.aliases,
		Short:   fmt.Sprintf("Manage %ss", k.noun),
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = cmd.Help()
			return errHelp
		},
	}
	cmd.AddCommand(listCmd(cli, k))
	if k.can(opCreate) {
		cmd.AddCommand(createCmd(cli, k))
	}
	if k.can(opUpdate) {
		cmd.AddCommand(updateCmd(cli, k))
	}
	if k.can(opDelete) {
		cmd.AddCommand(deleteCmd(cli, k))
	}
	return cmd
}

// newController builds the resource list of kind k. Static filters are sent with every list.
func newController[E resourcelist.Entity, D any](cli *commandLine, k kind[E, D], static map[string]string) (*resourcelist.Controller[E, D], error) {
	slots := make([]resourcelist.Slot, 0, len(k.slots))
	if static == nil {
		for _, s := range k.slots {
			slots = append(slots, resourcelist.Slot{Key: s.key, Label: s.label, Options: s.options(cli.client)})
		}
	}
	return resourcelist.New(resourcelist.Config[E, D]{
		Noun:       k.noun,
		Collection: k.collection(cli.client),
		Slots:      slots,
		Filters:    static,
		Validate:   cli.validate,
		Translator: cli.translator,
		Sink:       cli.sink,
		Logger:     cli.logger,
	})
}

func listCmd[E resourcelist.Entity, D any](cli *commandLine, k kind[E, D]) *cobra.Command {
	values := make([]string, len(k.slots))
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   fmt.Sprintf("List %ss", k.noun),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctl, err := newController(cli, k, nil)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			ctl.Start(ctx)
			ctl.Wait()

			if err = selectFilters(ctx, ctl, k.slots, values); err != nil {
				return err
			}
			st := ctl.State()
			if !st.Complete() {
				return cli.renderNextSlot(st.Slots, k.slots)
			}
			if st.Status == resourcelist.ListError {
				return st.LastError
			}
			cli.renderTable(k.header, rows(st.Items, k.row))
			return nil
		},
	}
	for i, s := range k.slots {
		cmd.Flags().StringVar(&values[i], s.flag, "", fmt.Sprintf("%s ID (or name)", s.label))
	}
	return cmd
}

// selectFilters applies the flag values to the slots in order, waiting for each dependent fetch.
func selectFilters[E resourcelist.Entity, D any](ctx context.Context, ctl *resourcelist.Controller[E, D], slots []slotFlag, values []string) error {
	for i, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		st := ctl.State()
		if i > 0 && !st.Slots[i].Enabled {
			return errors.Wrapf(resourcelist.ErrSlotDisabled, "--%s needs --%s", slots[i].flag, slots[i-1].flag)
		}
		if err := st.Slots[i].Err; err != nil {
			return errors.Wrapf(err, "loading %s options", slots[i].label)
		}
		id, ok := matchOption(st.Slots[i], value)
		if !ok {
			return errors.Errorf("unknown %s %q", slots[i].label, value)
		}
		if err := ctl.SetFilter(ctx, i, id); err != nil {
			return errors.Wrapf(err, "--%s", slots[i].flag)
		}
		ctl.Wait()
	}
	return nil
}

// matchOption resolves value against a slot's options, by ID first then by label.
func matchOption(s resourcelist.SlotState, value string) (string, bool) {
	if s.Options == nil {
		return value, true // options unknown: the server decides
	}
	for _, opt := range s.Options {
		if opt.ID == value {
			return opt.ID, true
		}
	}
	for _, opt := range s.Options {
		if strings.EqualFold(opt.Label, value) {
			return opt.ID, true
		}
	}
	return "", false
}

func createCmd[E resourcelist.Entity, D any](cli *commandLine, k kind[E, D]) *cobra.Command {
	var data, parent string
	cmd := &cobra.Command{
		Use:   "create",
		Short: fmt.Sprintf("Create a %s", k.noun),
		Example: fmt.Sprintf(`  academyctl %s create --data @%s.yaml
  academyctl %s create --data '{"title": "..."}'`, k.use, k.noun, k.use),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			draft, err := decodeDraft[D](cli.in, data)
			if err != nil {
				return err
			}
			ctl, err := newMutationController(cli, k, parent, &draft)
			if err != nil {
				return err
			}
			id, err := ctl.Create(cmd.Context(), draft)
			if err != nil {
				return err
			}
			fmt.Fprintf(cli.out, "%s ID: %s\n", k.noun, id)
			renderState(cli, k, ctl.State())
			return nil
		},
	}
	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON or YAML draft; @file reads a file, - reads stdin")
	_ = cmd.MarkFlagRequired("data")
	parentFlag(cmd, k, &parent, "default: from the draft")
	return cmd
}

func updateCmd[E resourcelist.Entity, D any](cli *commandLine, k kind[E, D]) *cobra.Command {
	var data, parent string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: fmt.Sprintf("Replace a %s with a full draft", k.noun),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := decodeDraft[D](cli.in, data)
			if err != nil {
				return err
			}
			ctl, err := newMutationController(cli, k, parent, &draft)
			if err != nil {
				return err
			}
			if err = ctl.Update(cmd.Context(), args[0], draft); err != nil {
				return err
			}
			renderState(cli, k, ctl.State())
			return nil
		},
	}
	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON or YAML draft; @file reads a file, - reads stdin")
	_ = cmd.MarkFlagRequired("data")
	parentFlag(cmd, k, &parent, "default: from the draft")
	return cmd
}

func deleteCmd[E resourcelist.Entity, D any](cli *commandLine, k kind[E, D]) *cobra.Command {
	var (
		yes    bool
		parent string
	)
	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   fmt.Sprintf("Delete a %s", k.noun),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes && !cli.confirm(fmt.Sprintf("Delete %s %s?", k.noun, args[0])) {
				fmt.Fprintln(cli.out, "aborted")
				return nil
			}
			ctl, err := newMutationController[E, D](cli, k, parent, nil)
			if err != nil {
				return err
			}
			if err = ctl.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			renderState(cli, k, ctl.State())
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	parentFlag(cmd, k, &parent, fmt.Sprintf("default: every %s", k.noun))
	return cmd
}

// parentFlag registers the flag of k's last slot on a mutation command.
func parentFlag[E resourcelist.Entity, D any](cmd *cobra.Command, k kind[E, D], value *string, dflt string) {
	if len(k.slots) == 0 {
		return
	}
	last := k.slots[len(k.slots)-1]
	cmd.Flags().StringVar(value, last.flag, "", fmt.Sprintf("%s ID of the list printed afterwards (%s)", last.label, dflt))
}

// newMutationController builds a list of kind k filtered on its last slot only, which is all the
// API needs to list a kind: the parent ID comes from the flag, else from the draft. Without either
// the refreshed list holds every entity of the kind.
func newMutationController[E resourcelist.Entity, D any](cli *commandLine, k kind[E, D], parent string, draft *D) (*resourcelist.Controller[E, D], error) {
	filters := map[string]string{}
	if len(k.slots) > 0 {
		last := k.slots[len(k.slots)-1]
		switch {
		case parent != "":
			id, err := requiredID(last.flag, parent)
			if err != nil {
				return nil, err
			}
			filters[last.key] = id.String()
		case draft != nil:
			if id := draftID(draft, last.key); id != "" {
				filters[last.key] = id
			}
		}
	}
	return newController(cli, k, filters)
}

// draftID returns the ID held by the JSON field key of draft, if any.
func draftID(draft interface{}, key string) string {
	buf, err := json.Marshal(draft)
	if err != nil {
		return ""
	}
	var fields map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader(buf))
	dec.UseNumber()
	if err = dec.Decode(&fields); err != nil {
		return ""
	}
	id, ok := fields[key].(json.Number)
	if !ok {
		return ""
	}
	if n, err := id.Int64(); err != nil || n <= 0 {
		return ""
	}
	return id.String()
}

func rows[E any](items []E, row func(E) table.Row) []table.Row {
	out := make([]table.Row, 0, len(items))
	for _, e := range items {
		out = append(out, row(e))
	}
	return out
}
