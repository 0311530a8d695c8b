/*
Package runner implements the interactive chat loop for the barista assistant.

It sits between a Processor (normally *router.Router) and the outside world.
Input and output go through a pluggable IOHandler, so the same loop drives a
terminal REPL (TextHandler) or a scripted JSON-lines session (JSONHandler).
Every inbound line is sanitized before it reaches the Processor.

# Usage

	r := runner.NewRunner(
		runner.WithProcessor(rt),
		runner.WithSessionID("user-1"),
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)

	if err := r.Run(ctx); err != nil {
		log.Fatal(err)
	}
*/
package runner
