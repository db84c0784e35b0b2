package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mikey/group-guard/internal/badwords"
	"github.com/mikey/group-guard/internal/core"
	"github.com/mikey/group-guard/internal/di"
)

func badwordsCmd(flags *di.CLIFlags) *cobra.Command {
	var chatID int64

	cmd := &cobra.Command{
		Use:   "badwords",
		Short: "Manage a chat's badword list in the configured store",
	}
	cmd.PersistentFlags().Int64Var(&chatID, "chat", 0, "chat id (required)")
	_ = cmd.MarkPersistentFlagRequired("chat")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the badwords of a chat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withIndex(flags, func(idx *badwords.Index) error {
				words, err := idx.List(cmd.Context(), chatID)
				if err != nil {
					return err
				}
				if len(words) == 0 {
					fmt.Printf("No badwords for chat %d\n", chatID)
					return nil
				}
				for i, w := range words {
					fmt.Printf("%d. %s\n", i+1, w)
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add [word...]",
		Short: "Add badwords to a chat",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withIndex(flags, func(idx *badwords.Index) error {
				return eachWord(cmd.Context(), args, func(ctx context.Context, w string) error {
					added, err := idx.Add(ctx, chatID, w)
					if err != nil {
						return err
					}
					if added {
						fmt.Printf("Added %q\n", w)
					} else {
						fmt.Printf("%q already present\n", w)
					}
					return nil
				})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "del [word...]",
		Short: "Remove badwords from a chat",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withIndex(flags, func(idx *badwords.Index) error {
				return eachWord(cmd.Context(), args, func(ctx context.Context, w string) error {
					removed, err := idx.Remove(ctx, chatID, w)
					if err != nil {
						return err
					}
					if removed {
						fmt.Printf("Removed %q\n", w)
					} else {
						fmt.Printf("%q not present\n", w)
					}
					return nil
				})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove all badwords of a chat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withIndex(flags, func(idx *badwords.Index) error {
				n, err := idx.Clear(cmd.Context(), chatID)
				if err != nil {
					return err
				}
				fmt.Printf("Removed %d badwords from chat %d\n", n, chatID)
				return nil
			})
		},
	})

	return cmd
}

// withIndex builds the CLI container and runs fn with the badword index,
// closing the store afterwards
func withIndex(flags *di.CLIFlags, fn func(idx *badwords.Index) error) error {
	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		return err
	}
	return container.Invoke(func(idx *badwords.Index, store core.BadwordStore) error {
		defer store.Close()
		return fn(idx)
	})
}

func eachWord(ctx context.Context, words []string, fn func(ctx context.Context, w string) error) error {
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		if err := fn(ctx, w); err != nil {
			return fmt.Errorf("%s: %w", w, err)
		}
	}
	return nil
}
