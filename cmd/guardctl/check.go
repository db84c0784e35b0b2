package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mikey/group-guard/internal/adapters/console"
	"github.com/mikey/group-guard/internal/core"
	"github.com/mikey/group-guard/internal/di"
	"github.com/mikey/group-guard/internal/dispatch"
	"github.com/mikey/group-guard/internal/spam"
)

func checkCmd(flags *di.CLIFlags) *cobra.Command {
	var (
		chatID   int64
		chatType string
		userID   int64
		file     string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run chat lines through the moderation rules",
		Long: `Reads one message per line from stdin (or --file) and prints what the bot
would do with it. A line of the form "<user id>: <text>" is sent by that
user, other lines by --user. Commands such as /bad_add work as in a real
chat; use --admin to make a user a group administrator.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := os.Stdin
			if file != "" {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			container, err := di.BuildCLIContainer(flags)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return container.Invoke(func(
				c *console.Console,
				d *dispatch.Dispatcher,
				tracker *spam.Tracker,
				store core.BadwordStore,
			) error {
				defer store.Close()
				defer tracker.Stop()
				return c.Run(ctx, in, d, console.RunOptions{
					Chat:   core.Chat{ID: chatID, Type: core.ChatType(chatType)},
					UserID: userID,
				})
			})
		},
	}

	cmd.Flags().Int64Var(&chatID, "chat", -1, "chat id of the simulated chat")
	cmd.Flags().StringVar(&chatType, "chat-type", string(core.ChatTypeSupergroup), "chat type (group, supergroup, private)")
	cmd.Flags().Int64Var(&userID, "user", 1, "sender of lines without a user id prefix")
	cmd.Flags().Int64SliceVar(&flags.Admins, "admin", nil, "user ids that are group administrators")
	cmd.Flags().StringVarP(&file, "file", "f", "", "read messages from file instead of stdin")
	return cmd
}
