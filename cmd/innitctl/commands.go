package main

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"innit/internal/config"
	"innit/internal/genetics"
	innitapi "innit/pkg/innit"
)

func newGenerateCommand(flags *globalFlags, cfg config.Config) *cobra.Command {
	var (
		dnaType   string
		length    int
		hasLTR    bool
		save      bool
		name      string
		stability float64
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a random genome and print its phenotype",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			kind, err := genetics.ParseDnaType(dnaType)
			if err != nil {
				return err
			}
			return flags.withClient(func(client *innitapi.Client) error {
				expression, err := client.GenerateAndDecode(cmd.Context(), innitapi.GenerateRequest{
					DnaType: kind,
					HasLTR:  hasLTR,
					Length:  length,
				})
				if err != nil {
					return err
				}
				out := expressionView(expression)
				if save {
					genome, err := client.Save(cmd.Context(), innitapi.SaveRequest{
						Name:      name,
						DnaType:   kind,
						Raw:       expression.Dna.Raw,
						Stability: stability,
					})
					if err != nil {
						return err
					}
					out.ID = genome.ID
				}
				return printExpression(cmd.OutOrStdout(), flags.jsonOut, out)
			})
		},
	}
	cmd.Flags().StringVar(&dnaType, "type", "nucleus", "dna type: nucleus|nucleoid|rna|plasmid")
	cmd.Flags().IntVar(&length, "length", cfg.GenomeLength, "number of gene windows")
	cmd.Flags().BoolVar(&hasLTR, "ltr", cfg.HasLTR, "flank the genome with LTR markers")
	cmd.Flags().BoolVar(&save, "save", false, "persist the generated genome")
	cmd.Flags().StringVar(&name, "name", "", "name stored with the genome")
	cmd.Flags().Float64Var(&stability, "stability", cfg.Stability, "gene stability stored with the genome")
	return cmd
}

func newEncodeCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:         "encode <trait>...",
		Short:       "Encode trait names into a genome",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{offlineAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := genetics.DefaultCatalog().FromTraitNames(args)
			if err != nil {
				return err
			}
			if flags.jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"raw": hex.EncodeToString(raw)})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(raw))
			return err
		},
	}
}

func newDecodeCommand(flags *globalFlags) *cobra.Command {
	var dnaType string
	cmd := &cobra.Command{
		Use:   "decode <hex>",
		Short: "Decode a hex genome and print its phenotype",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := parseHex(args[0])
			if err != nil {
				return err
			}
			kind, err := genetics.ParseDnaType(dnaType)
			if err != nil {
				return err
			}
			return flags.withClient(func(client *innitapi.Client) error {
				expression, err := client.Decode(raw, kind)
				if err != nil {
					return err
				}
				return printExpression(cmd.OutOrStdout(), flags.jsonOut, expressionView(expression))
			})
		},
	}
	cmd.Flags().StringVar(&dnaType, "type", "nucleus", "dna type: nucleus|nucleoid|rna|plasmid")
	return cmd
}

func newMutateCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "mutate <hex>",
		Short: "Flip one random bit of a hex genome",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := parseHex(args[0])
			if err != nil {
				return err
			}
			return flags.withClient(func(client *innitapi.Client) error {
				mutated, report, err := client.Mutate(raw)
				if err != nil {
					return err
				}
				view := mutationView{Raw: hex.EncodeToString(mutated)}
				if report.Old != report.New {
					view.Gene = report.Gene
					view.Position = report.Position
					view.From = fmt.Sprintf("%08b", report.Old)
					view.To = fmt.Sprintf("%08b", report.New)
				}
				return printMutation(cmd.OutOrStdout(), flags.jsonOut, view)
			})
		},
	}
}

func newReproduceCommand(flags *globalFlags) *cobra.Command {
	var operator string
	cmd := &cobra.Command{
		Use:   "reproduce <genome-id>",
		Short: "Derive a child genome from a stored parent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withClient(func(client *innitapi.Client) error {
				result, err := client.Reproduce(cmd.Context(), innitapi.ReproduceRequest{
					ParentID: args[0],
					Operator: operator,
				})
				if err != nil {
					return err
				}
				out := expressionView(result.Expression)
				out.ID = result.Child.ID
				out.ParentID = result.Child.ParentID
				out.Generation = result.Lineage.Generation
				return printExpression(cmd.OutOrStdout(), flags.jsonOut, out)
			})
		},
	}
	cmd.Flags().StringVar(&operator, "operator", "", "registered operator (default bit_flip)")
	return cmd
}

func newSpawnCommand(flags *globalFlags) *cobra.Command {
	var (
		npc   string
		level uint32
		save  bool
	)
	cmd := &cobra.Command{
		Use:   "spawn",
		Short: "Spawn an entity from the object templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flags.templates == "" {
				return errors.New("spawn requires --templates or INNIT_TEMPLATES")
			}
			return flags.withClient(func(client *innitapi.Client) error {
				result, err := client.Spawn(cmd.Context(), innitapi.SpawnRequest{Npc: npc, Level: level, Save: save})
				if err != nil {
					return err
				}
				out := expressionView(innitapi.Expression{Dna: result.Spawned.Dna, Phenotype: result.Spawned.Phenotype})
				out.Npc = result.Spawned.Template.Npc
				if result.Genome != nil {
					out.ID = result.Genome.ID
				}
				return printExpression(cmd.OutOrStdout(), flags.jsonOut, out)
			})
		},
	}
	cmd.Flags().StringVar(&npc, "npc", "", "object template name (empty picks from the spawn table)")
	cmd.Flags().Uint32Var(&level, "level", 1, "dungeon level for spawn table lookups")
	cmd.Flags().BoolVar(&save, "save", false, "persist the spawned genome")
	return cmd
}

func newLineageCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "lineage <genome-id>",
		Short: "Print the derivation chain of a genome",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withClient(func(client *innitapi.Client) error {
				chain, err := client.Lineage(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printLineage(cmd.OutOrStdout(), flags.jsonOut, chain)
			})
		},
	}
}

func newListCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored genomes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return flags.withClient(func(client *innitapi.Client) error {
				decoded, err := client.DecodeAll(cmd.Context())
				if err != nil {
					return err
				}
				return printGenomes(cmd.OutOrStdout(), flags.jsonOut, decoded)
			})
		},
	}
}

func newCatalogCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:         "catalog",
		Short:       "Print the trait catalog and its symbols",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{offlineAnnotation: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printCatalog(cmd.OutOrStdout(), flags.jsonOut, genetics.DefaultCatalog())
		},
	}
}

func newCensusCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "census",
		Short: "Count trait windows across stored genomes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return flags.withClient(func(client *innitapi.Client) error {
				census, err := client.Census(cmd.Context())
				if err != nil {
					return err
				}
				return printCensus(cmd.OutOrStdout(), flags.jsonOut, census)
			})
		},
	}
}

func newExportCommand(flags *globalFlags) *cobra.Command {
	var exportID string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write stored genomes, lineage and census to the exports directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return flags.withClient(func(client *innitapi.Client) error {
				summary, err := client.Export(cmd.Context(), innitapi.ExportRequest{ExportID: exportID})
				if err != nil {
					return err
				}
				return printExport(cmd.OutOrStdout(), flags.jsonOut, summary)
			})
		},
	}
	cmd.Flags().StringVar(&exportID, "id", "", "export id (default random)")
	return cmd
}

func parseHex(s string) ([]byte, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("genome must be hex encoded: %w", err)
	}
	return raw, nil
}
