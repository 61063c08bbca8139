package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"despesas/internal/core"
)

func newInterestCommand() *cobra.Command {
	var principal, rate, months string

	cmd := &cobra.Command{
		Use:     "interest",
		Short:   "Calcula o valor futuro com juros compostos mensais",
		Example: "  despesas interest --principal 1000 --rate 1 --months 12",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := core.ParseInterestInputs(principal, rate, months)
			if err != nil {
				return fmt.Errorf("informe números válidos para capital, taxa e meses: %w", err)
			}
			fv, err := in.FutureValue()
			if errors.Is(err, core.ErrResultOverflow) {
				fmt.Fprintln(cmd.ErrOrStderr(), errorStyle.Render("Resultado grande demais para ser exibido."))
				return err
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render("Juros compostos"))
			fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Capital:"), core.FormatCurrency(in.Principal))
			fmt.Fprintf(out, "%s %s%% a.m.\n", labelStyle.Render("Taxa:"), in.RatePercent.String())
			fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Meses:"), in.Months.String())
			fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Valor futuro:"), valueStyle.Render(core.FormatCurrency(fv)))
			return nil
		},
	}

	cmd.Flags().StringVar(&principal, "principal", "", "capital inicial")
	cmd.Flags().StringVar(&rate, "rate", "", "taxa de juros mensal em %")
	cmd.Flags().StringVar(&months, "months", "", "número de meses")
	_ = cmd.MarkFlagRequired("principal")
	_ = cmd.MarkFlagRequired("rate")
	_ = cmd.MarkFlagRequired("months")

	return cmd
}
