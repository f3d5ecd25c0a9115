package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/rekodi/core/dashboard"
	"github.com/trezcool/rekodi/core/student"
)

var (
	createFunc = func(name string) (io.WriteCloser, error) { return os.Create(name) } // mockable
	openFunc   = func(name string) (io.ReadCloser, error) { return os.Open(name) }     // mockable
)

// commandLine processes spreadsheets offline, without the dashboard.
type commandLine struct {
	sheets dashboard.Spreadsheets
	out    io.Writer
}

func (cli *commandLine) run(args []string) error {
	root := cli.rootCmd()
	root.SetArgs(args)
	return root.Execute()
}

func (cli *commandLine) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "rekodi",
		Short:         "Process student academic and financial records",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	if cli.out != nil {
		root.SetOut(cli.out)
		root.SetErr(cli.out)
	}

	var templateOut string
	templateCmd := &cobra.Command{
		Use:   "template",
		Short: "Write the empty upload template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cli.writeTemplate(templateOut); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Template written to %s\n", templateOut)
			return nil
		},
	}
	templateCmd.Flags().StringVarP(&templateOut, "output", "o", dashboard.TemplateFileName, "Output file path")

	var processOut string
	processCmd := &cobra.Command{
		Use:   "process [input.xlsx]",
		Short: "Compute the derived columns of a student records spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := cli.process(args[0], processOut)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Processed %d records from %s into %s\n", len(ds.Records), args[0], processOut)
			printSummary(cmd.OutOrStdout(), student.Analyze(ds.Records))
			return nil
		},
	}
	processCmd.Flags().StringVarP(&processOut, "output", "o", dashboard.ProcessedFileName, "Output file path")

	root.AddCommand(templateCmd, processCmd)
	return root
}

func (cli *commandLine) writeTemplate(path string) error {
	f, err := createFunc(path)
	if err != nil {
		return errors.Wrap(err, "creating template file")
	}
	if err = cli.sheets.WriteTemplate(f); err != nil {
		_ = f.Close()
		return errors.Wrap(err, "writing template")
	}
	return f.Close()
}

func (cli *commandLine) process(inPath, outPath string) (student.Dataset, error) {
	in, err := openFunc(inPath)
	if err != nil {
		return student.Dataset{}, errors.Wrap(err, "opening input")
	}
	defer in.Close()

	table, err := cli.sheets.ReadTable(in)
	if err != nil {
		return student.Dataset{}, errors.Wrap(err, "reading input")
	}
	ds, err := student.Load(table)
	if err != nil {
		if mErr, ok := errors.Cause(err).(*student.MissingColumnsError); ok {
			return student.Dataset{}, errors.New(mErr.Message())
		}
		return student.Dataset{}, err
	}

	out, err := createFunc(outPath)
	if err != nil {
		return student.Dataset{}, errors.Wrap(err, "creating output file")
	}
	if err = cli.sheets.WriteProcessed(out, ds); err != nil {
		_ = out.Close()
		return student.Dataset{}, errors.Wrap(err, "writing processed data")
	}
	return ds, out.Close()
}

func printSummary(w io.Writer, a student.Analytics) {
	printCounts := func(title string, counts []student.Count) {
		fmt.Fprintf(w, "%s:\n", title)
		for _, c := range counts {
			fmt.Fprintf(w, "  %-14s %d\n", c.Label, c.Count)
		}
	}
	printCounts("Grades", a.Grades)
	printCounts("Attendance", a.AttendanceStatuses)
	printCounts("Payment", a.PaymentStatuses)
	for _, amt := range a.FeeDueByStatus {
		fmt.Fprintf(w, "Fee due (%s): %s\n", amt.Label, student.FormatNumber(amt.Amount))
	}
}
