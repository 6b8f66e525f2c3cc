package cmdutils

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ipsfa/inventario-client/internal/business"
	"github.com/ipsfa/inventario-client/internal/output"
	"github.com/ipsfa/inventario-client/internal/resource"
)

// Filter maps a list flag to a query parameter.
type Filter struct {
	Flag  string
	Param string
	Usage string
}

// Resource builds the list, get, create, update and delete commands of one collection.
type Resource[T resource.Entity[int64]] struct {
	Store func(*business.App) *resource.Store[int64, T]

	ListRoute   string
	CreateRoute string
	EditRoute   string
	// DetailRoute is entered by get. EditRoute is used when empty.
	DetailRoute string

	Filters []Filter
	Columns []string
	Row     func(T) []string

	BuildInfo string
}

// Commands returns all five commands.
func (r Resource[T]) Commands() []*cobra.Command {
	return []*cobra.Command{r.List(), r.Get(), r.Create(), r.Update(), r.Delete()}
}

func (r Resource[T]) List() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all entries",
		Args:  cobra.NoArgs,
	}
	for _, f := range r.Filters {
		cmd.Flags().String(f.Flag, "", f.Usage)
	}

	return AppCommand(cmd, r.BuildInfo, Route(r.ListRoute), false,
		func(ctx context.Context, env *Env, _ []string) error {
			query := url.Values{}
			for _, f := range r.Filters {
				if v := flagValue(cmd, f.Flag); v != "" {
					query.Set(f.Param, v)
				}
			}

			items, err := r.Store(env.App).FetchAll(ctx, query)
			if err != nil {
				return err
			}

			return env.Out.Print(items, func() output.Table { return r.table(items...) })
		})
}

func (r Resource[T]) Get() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one entry",
		Args:  cobra.ExactArgs(1),
	}

	route := r.DetailRoute
	if route == "" {
		route = r.EditRoute
	}

	return AppCommand(cmd, r.BuildInfo, RouteWithID(route), false,
		func(ctx context.Context, env *Env, args []string) error {
			id, err := ParseID(args[0])
			if err != nil {
				return err
			}

			item, err := r.Store(env.App).FetchOne(ctx, id)
			if err != nil {
				return err
			}

			return env.Out.Print(item, func() output.Table { return r.table(item) })
		})
}

func (r Resource[T]) Create() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an entry from a JSON or YAML document",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringP(FlagFile, "f", "-", "payload file, - for stdin")

	return AppCommand(cmd, r.BuildInfo, Route(r.CreateRoute), false,
		func(ctx context.Context, env *Env, _ []string) error {
			payload, err := ReadPayload(cmd)
			if err != nil {
				return err
			}

			item, err := r.Store(env.App).Create(ctx, payload)
			if err != nil {
				return err
			}

			return env.Out.Print(item, func() output.Table { return r.table(item) })
		})
}

func (r Resource[T]) Update() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace an entry with a JSON or YAML document",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().StringP(FlagFile, "f", "-", "payload file, - for stdin")

	return AppCommand(cmd, r.BuildInfo, RouteWithID(r.EditRoute), false,
		func(ctx context.Context, env *Env, args []string) error {
			id, err := ParseID(args[0])
			if err != nil {
				return err
			}

			payload, err := ReadPayload(cmd)
			if err != nil {
				return err
			}

			item, err := r.Store(env.App).Update(ctx, id, payload)
			if err != nil {
				return err
			}

			return env.Out.Print(item, func() output.Table { return r.table(item) })
		})
}

func (r Resource[T]) Delete() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an entry",
		Args:  cobra.ExactArgs(1),
	}

	return AppCommand(cmd, r.BuildInfo, RouteWithID(r.EditRoute), false,
		func(ctx context.Context, env *Env, args []string) error {
			id, err := ParseID(args[0])
			if err != nil {
				return err
			}

			store := r.Store(env.App)
			if err := store.Delete(ctx, id); err != nil {
				return err
			}

			return env.Out.Message(fmt.Sprintf("Deleted %s %d.", store.Labels().Singular, id))
		})
}

func (r Resource[T]) table(items ...T) output.Table {
	t := output.Table{Header: r.Columns}
	for _, item := range items {
		t.Append(r.Row(item)...)
	}

	return t
}

// ParseID parses a positive numeric id argument.
func ParseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}

	return id, nil
}
