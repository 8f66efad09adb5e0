package cli

import "github.com/spf13/cobra"

type BoolFlag struct {
	Name    string
	Usage   string
	Default bool
}

type StringFlag struct {
	Name    string
	Usage   string
	Default string
}

type IntFlag struct {
	Name    string
	Usage   string
	Default int
}

// LeafCommand - команда, которая что-то выполняет
type LeafCommand struct {
	Use       string
	Short     string
	Args      cobra.PositionalArgs
	BoolFlags []BoolFlag
	StrFlags  []StringFlag
	IntFlags  []IntFlag
	RunE      func(cmd *cobra.Command, args []string) error
}

func (lc LeafCommand) Build() *cobra.Command {
	cmd := &cobra.Command{
		Use:   lc.Use,
		Short: lc.Short,
		Args:  lc.Args,
		RunE:  lc.RunE,
	}
	for _, f := range lc.BoolFlags {
		cmd.Flags().Bool(f.Name, f.Default, f.Usage)
	}
	for _, f := range lc.StrFlags {
		cmd.Flags().String(f.Name, f.Default, f.Usage)
	}
	for _, f := range lc.IntFlags {
		cmd.Flags().Int(f.Name, f.Default, f.Usage)
	}
	return cmd
}

// GroupCommand только объединяет подкоманды
type GroupCommand struct {
	Use         string
	Short       string
	Subcommands []*cobra.Command
}

func (gc GroupCommand) Build() *cobra.Command {
	cmd := &cobra.Command{
		Use:   gc.Use,
		Short: gc.Short,
	}
	for _, sub := range gc.Subcommands {
		cmd.AddCommand(sub)
	}
	return cmd
}

// periodFlags - --year и --month; 0 означает текущий период
var periodFlags = []IntFlag{
	{Name: "year", Usage: "год (по умолчанию текущий)"},
	{Name: "month", Usage: "месяц 1-12 (по умолчанию текущий)"},
}
