package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/CTAG07/emotegen/pkg/species"
	"github.com/spf13/cobra"
)

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list SPECIES",
		Short: "Show the variants, assets and templates of a species",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			decl, err := species.NewLoader(a.logger, a.config.Generator.Extensions...).Load(args[0])
			if err != nil {
				return err
			}
			printDeclaration(cmd.OutOrStdout(), decl)
			return nil
		},
	}
}

func printDeclaration(w io.Writer, decl *species.Declaration) {
	chain := []string{decl.Name}
	for _, anc := range decl.Ancestors() {
		chain = append(chain, anc.Name)
	}
	fmt.Fprintf(w, "species: %s\n", strings.Join(chain, " <- "))

	fmt.Fprintln(w, "variants:")
	for _, name := range decl.VariantNames() {
		if tags := decl.Tags(name); len(tags) > 0 {
			fmt.Fprintf(w, "  %s [%s]\n", name, strings.Join(tags, ", "))
		} else {
			fmt.Fprintf(w, "  %s\n", name)
		}
	}
	fmt.Fprintln(w, "assets:")
	for _, name := range decl.AssetNames() {
		fmt.Fprintf(w, "  %s\n", name)
	}
	fmt.Fprintln(w, "templates:")
	for _, name := range decl.TemplateNames() {
		fmt.Fprintf(w, "  %s\n", name)
	}
}
