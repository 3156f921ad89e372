package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/wa-chat-analyzer/internal/stats"
)

func usersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List senders in order of their first message (TSV: sender, messages, media)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, _, err := a.loadTable(cmd.Context())
			if err != nil {
				return err
			}
			for _, u := range stats.AllUsers(tbl) {
				name := strings.ReplaceAll(u.Sender, "\t", " ")
				fmt.Printf("%s\t%d\t%d\n", name, u.TotalMessages, u.MediaCount)
			}
			return nil
		},
	}
}
