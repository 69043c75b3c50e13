// Command devform is a terminal front end for the developer registration API.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"devregistry/client"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(out io.Writer) *cobra.Command {
	var (
		apiURL  string
		timeout time.Duration
	)

	defaultAPI := os.Getenv("DEVFORM_API")
	if defaultAPI == "" {
		defaultAPI = "http://localhost:3000"
	}

	root := &cobra.Command{
		Use:           "devform",
		Short:         "Register and list developers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&apiURL, "api", defaultAPI, "base URL of the developer API")
	root.PersistentFlags().DurationVar(&timeout, "timeout", client.DefaultTimeout, "request timeout")

	api := func() *client.Client {
		return client.New(apiURL, client.WithTimeout(timeout))
	}

	root.AddCommand(
		newRegisterCommand(out, api),
		newListCommand(out, api),
		newDeleteCommand(out, api),
	)
	return root
}

func newRegisterCommand(out io.Writer, api func() *client.Client) *cobra.Command {
	var form client.Form

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Submit the registration form",
		RunE: func(cmd *cobra.Command, _ []string) error {
			success, err := form.Submit(cmd.Context(), api(), time.Now())
			if err != nil {
				fmt.Fprintln(out, client.Message(err))
				return err
			}

			fmt.Fprintf(out, "Cadastro feito com sucesso!\nBem-vindo ao site %s!\nData de nascimento: %s\nIdade: %d anos\nEmail: %s\nId: %s\n",
				success.Nome, success.DateOfBirth, success.Age, success.Email, success.Id)
			return nil
		},
	}
	cmd.Flags().StringVar(&form.Nome, "nome", "", "developer name")
	cmd.Flags().StringVar(&form.Email, "email", "", "developer email")
	cmd.Flags().StringVar(&form.DateOfBirth, "dob", "", "date of birth (YYYY-MM-DD)")
	return cmd
}

func newListCommand(out io.Writer, api func() *client.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered developers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			list := client.NewDeveloperList(api())
			if err := list.Load(cmd.Context()); err != nil {
				fmt.Fprintln(out, client.Message(err))
				return err
			}
			printDevelopers(out, list)
			return nil
		},
	}
}

func newDeleteCommand(out io.Writer, api func() *client.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a developer and show the remaining list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			list := client.NewDeveloperList(api())
			if err := list.Load(ctx); err != nil {
				fmt.Fprintln(out, client.Message(err))
				return err
			}
			if err := list.Delete(ctx, args[0]); err != nil {
				fmt.Fprintln(out, client.Message(err))
				return err
			}
			printDevelopers(out, list)
			return nil
		},
	}
}

func printDevelopers(out io.Writer, list *client.DeveloperList) {
	developers := list.Developers()
	if len(developers) == 0 {
		fmt.Fprintln(out, "Nenhum desenvolvedor cadastrado.")
		return
	}
	fmt.Fprintln(out, "Cadastros Feitos:")
	for _, developer := range developers {
		fmt.Fprintf(out, "%s  %s  %s  %s\n", developer.Id, developer.Nome, developer.Email, developer.DateOfBirth)
	}
}
