package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"pokedex/catalog/internal/client"
	"pokedex/catalog/internal/config"
	"pokedex/catalog/internal/service"
	"pokedex/catalog/internal/state"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	listPage int
	listSize int
)

func init() {
	listCmd.Flags().IntVar(&listPage, "page", 1, "page number")
	listCmd.Flags().IntVar(&listSize, "size", 0, "page size (default catalog.page_size)")
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print one page of the catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSession(func(ctx context.Context, cfg *config.Config, svc *service.Service) error {
			size := listSize
			if size < 1 {
				size = cfg.Catalog.PageSize
			}
			if err := svc.FetchList(ctx, listPage, size).Wait(); err != nil {
				return err
			}
			snapshot := svc.Snapshot()
			printList(cmd.OutOrStdout(), snapshot, snapshot.Items, "")
			return nil
		})
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the details of one catalog entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", args[0], err)
		}

		return runSession(func(ctx context.Context, cfg *config.Config, svc *service.Service) error {
			if err := svc.FetchByID(ctx, id).Wait(); err != nil {
				return err
			}
			if record, ok := svc.Snapshot().Selected.Get(); ok {
				printDetail(cmd.OutOrStdout(), record, cfg.Catalog.FlavorLanguage)
			}
			return nil
		})
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <name>",
	Short: "Look an entry up by name, falling back to filtering the first page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := args[0]

		return runSession(func(ctx context.Context, cfg *config.Config, svc *service.Service) error {
			if err := svc.FetchList(ctx, 1, cfg.Catalog.PageSize).Wait(); err != nil {
				return err
			}
			// A miss falls back to filtering the loaded page
			if err := svc.SearchByName(ctx, query).Wait(); err != nil && !errors.Is(err, client.ErrNotFound) {
				return err
			}

			snapshot := svc.Snapshot()
			if record, ok := snapshot.Selected.Get(); ok {
				printDetail(cmd.OutOrStdout(), record, cfg.Catalog.FlavorLanguage)
				return nil
			}
			printList(cmd.OutOrStdout(), snapshot, svc.DisplayList(snapshot, query), query)
			return nil
		})
	},
}

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Interactively page through the catalog",
	Long: `Reads commands from stdin:
  n, p          next / previous page
  g <page>      go to page
  m             load more items onto the current list
  s <id>        show an entry
  f <name>      search by name (empty clears)
  q             quit`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSession(func(ctx context.Context, cfg *config.Config, svc *service.Service) error {
			return browse(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), cfg, svc)
		})
	},
}

func browse(ctx context.Context, in io.Reader, out io.Writer, cfg *config.Config, svc *service.Service) error {
	unsubscribe := svc.Subscribe(func(change state.Change) {
		if change.State.HasError() {
			log.Debugf("%s left error: %s", change.Event.EventType(), change.State.LastError)
		}
	})
	defer unsubscribe()

	show := func(p *service.Pending) {
		p.Wait()
		snapshot := svc.Snapshot()
		if snapshot.HasError() {
			fmt.Fprintf(out, "error: %s\n", snapshot.LastError)
			svc.ClearError()
		}
		printList(out, snapshot, svc.DisplayList(snapshot, snapshot.SearchQuery), snapshot.SearchQuery)
	}

	// Navigating or opening an entry leaves search mode, otherwise the grid
	// keeps showing the old query's results
	leaveSearch := func() {
		if svc.Snapshot().SearchQuery != "" {
			svc.SetSearchQuery("")
		}
	}

	show(svc.GoToPage(ctx, 1))

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		command, arg, _ := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
		arg = strings.TrimSpace(arg)

		switch command {
		case "":
		case "q", "quit":
			return nil
		case "n":
			leaveSearch()
			show(svc.GoToPage(ctx, svc.NextPage()))
		case "p":
			leaveSearch()
			show(svc.GoToPage(ctx, svc.PreviousPage()))
		case "g":
			page, err := strconv.Atoi(arg)
			if err != nil {
				fmt.Fprintf(out, "invalid page %q\n", arg)
				continue
			}
			leaveSearch()
			show(svc.GoToPage(ctx, page))
		case "m":
			show(svc.LoadMore(ctx, cfg.Catalog.PageSize))
		case "s":
			id, err := strconv.Atoi(arg)
			if err != nil {
				fmt.Fprintf(out, "invalid id %q\n", arg)
				continue
			}
			leaveSearch()
			if err := svc.FetchByID(ctx, id).Wait(); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				svc.ClearError()
				continue
			}
			if record, ok := svc.Snapshot().Selected.Get(); ok {
				printDetail(out, record, cfg.Catalog.FlavorLanguage)
			}
		case "f":
			svc.SetSearchQuery(arg)
			pending := svc.SearchByName(ctx, arg)
			if err := pending.Wait(); errors.Is(err, client.ErrNotFound) {
				fmt.Fprintf(out, "no exact match for %q, filtering loaded items\n", arg)
				svc.ClearError()
			}
			show(pending)
		default:
			fmt.Fprintf(out, "unknown command %q\n", command)
		}
	}
}
