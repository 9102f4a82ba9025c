package main

import (
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/goserg/todoserver/auth/hasher"
)

func newHashPasswordCmd() *cobra.Command {
	var cost int
	cmd := &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print the stored form of a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := hasher.NewBcrypt(cost).Hash(args[0])
			if err != nil {
				return err
			}
			cmd.Println(hash)
			return nil
		},
	}
	cmd.Flags().IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	return cmd
}
