/*
Package cli provides the shared pieces of the regcheck command: output
formatters, typed command errors with exit codes, signal handling and a
progress bar for multi-document runs.

Output:

	formatter := cli.NewFormatter(cli.FormatJUnit)
	if err := formatter.FormatTo(os.Stdout, rep); err != nil {
		return err
	}

Exit codes: ExitOK when every document is valid, ExitInvalid when any
document failed validation (InvalidError), ExitError for everything else.
*/
package cli
