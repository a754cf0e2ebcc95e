/*
Package cli provides command-line utilities shared by the janus command.

Output Formatting:

Command results render as text, JSON, or CSV. CSV requires the result to
implement Tabular:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return err
	}

Progress Reporting:

For long-running operations, such as probing every configured provider:

	progress := cli.NewProgressReporter(os.Stdout)
	progress.Start(total)
	for i := range items {
		// Do work
		progress.Update(int64(i + 1))
	}
	progress.Finish()

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx := cli.SetupSignalHandler()
	// ctx is cancelled when a shutdown signal arrives
*/
package cli
