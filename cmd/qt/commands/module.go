package commands

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/krew-solutions/quantum-go/quantum/module"
)

func newModuleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "module",
		Short: "Manage application modules",
	}
	cmd.AddCommand(newModuleGenerateCommand())
	return cmd
}

func newModuleGenerateCommand() *cobra.Command {
	opts := module.Options{}
	cmd := &cobra.Command{
		Use:   "generate <name>",
		Short: "Generate a module scaffold",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Name = args[0]
			files, err := module.NewGenerator().Generate(opts)
			if err != nil {
				return err
			}
			for _, f := range files {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			log.Info().Str("module", opts.Name).Int("files", len(files)).Msg("module generated")
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.Template, "template", "t", module.DefaultTemplate, "template name")
	cmd.Flags().StringVarP(&opts.Dir, "dir", "d", "modules", "directory modules live in")
	cmd.Flags().StringVar(&opts.ImportPath, "import-path", "", "Go import path of --dir")
	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "overwrite an existing module")
	return cmd
}
