/*
Package cli provides the helpers shared by the relay command.

Output Formatting:

Commands build a Table (or any JSON-encodable value) and hand it to a
Formatter chosen by the --output flag:

	table := &cli.Table{Headers: []string{"PROVIDER", "STATUS"}}
	table.Append("gemini", "blocked")
	if err := cli.NewFormatter(cli.FormatText).FormatTo(os.Stdout, table); err != nil {
		return err
	}

Server Client:

Commands that act on a running server (status, unblock) use Client, which
decodes failure bodies into *failure.Error:

	c := cli.NewClient("http://127.0.0.1:8000", 10*time.Second)
	var status dispatch.Status
	err := c.Get(ctx, "/api/v1/ai/status", &status)

Errors and Exit Codes:

Commands return *ConfigError for bad configuration and *CommandError for
failed operations. ExitCode turns either into the process exit status
(2 for configuration problems, 130 after an interrupt, 1 otherwise).

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler()
	defer stop()
*/
package cli
