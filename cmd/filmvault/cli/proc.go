package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/filmvault/filmvault/internal/model"
	"github.com/filmvault/filmvault/internal/service"
)

func newProcCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proc",
		Short: "Call the catalogue stored procedures",
		Long: `Run one of the stored procedures the API wraps and print its result as JSON.
Procedure names come from the procedures section of the config file.`,
	}

	cmd.AddCommand(newProcMathsCmd(a))
	cmd.AddCommand(newProcInsertCmd(a))
	cmd.AddCommand(newProcSplitCmd(a))
	cmd.AddCommand(newProcLinkCmd(a))
	cmd.AddCommand(newProcAwardCmd(a))

	return cmd
}

// withProcs runs fn against a procedure service and prints its result.
func (a *app) withProcs(cmd *cobra.Command, fn func(ctx context.Context, procs *service.ProcedureService) (interface{}, error)) error {
	_, st, svc, _, err := a.bootstrap(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer st.Close()

	res, err := fn(cmd.Context(), svc.procs)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), res)
}

func newProcMathsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "maths <operator>",
		Short:   "Aggregate the configured column with SUM, AVG, MAX or MIN",
		Example: `  filmvault proc maths avg`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := service.NormalizeOperator(args[0]); err != nil {
				return err
			}
			return a.withProcs(cmd, func(ctx context.Context, procs *service.ProcedureService) (interface{}, error) {
				res, err := procs.MathsFunction(ctx, args[0])
				if err != nil {
					return nil, err
				}
				if res == nil {
					return map[string]interface{}{"operation": args[0], "result": nil}, nil
				}
				return res, nil
			})
		},
	}
}

func newProcInsertCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "insert",
		Short: "Run the batch insert procedure",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withProcs(cmd, func(ctx context.Context, procs *service.ProcedureService) (interface{}, error) {
				return procs.InsertBatch(ctx)
			})
		},
	}
}

func newProcSplitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "split",
		Short: "Run the random split procedure",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withProcs(cmd, func(ctx context.Context, procs *service.ProcedureService) (interface{}, error) {
				return procs.RandomSplit(ctx)
			})
		},
	}
}

func newProcLinkCmd(a *app) *cobra.Command {
	var in model.ActorMovieLink

	cmd := &cobra.Command{
		Use:     "link",
		Short:   "Link an actor to a movie by last name and title",
		Example: `  filmvault proc link --actor-lastname Weaver --movie-title Alien --character Ripley`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withProcs(cmd, func(ctx context.Context, procs *service.ProcedureService) (interface{}, error) {
				return procs.LinkActorToMovie(ctx, in)
			})
		},
	}

	cmd.Flags().StringVar(&in.ActorLastName, "actor-lastname", "", "Actor last name")
	cmd.Flags().StringVar(&in.MovieTitle, "movie-title", "", "Movie title")
	cmd.Flags().StringVar(&in.Character, "character", "", "Character played")
	cmd.MarkFlagRequired("actor-lastname")
	cmd.MarkFlagRequired("movie-title")
	cmd.MarkFlagRequired("character")

	return cmd
}

func newProcAwardCmd(a *app) *cobra.Command {
	var in model.AwardCreate

	cmd := &cobra.Command{
		Use:     "award",
		Short:   "Record an award for an actor",
		Example: `  filmvault proc award --actor-id 7 --name "Best Actress" --year 1987`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.AwardYear <= 0 {
				return fmt.Errorf("--year must be positive")
			}
			return a.withProcs(cmd, func(ctx context.Context, procs *service.ProcedureService) (interface{}, error) {
				return procs.AddAward(ctx, in)
			})
		},
	}

	cmd.Flags().Int64Var(&in.ActorID, "actor-id", 0, "Actor id")
	cmd.Flags().StringVar(&in.AwardName, "name", "", "Award name")
	cmd.Flags().IntVar(&in.AwardYear, "year", 0, "Award year")
	cmd.MarkFlagRequired("actor-id")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("year")

	return cmd
}
