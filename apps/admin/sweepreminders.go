package main

import "fmt"

// sweepReminders runs one due-reminder pass, for cron-style schedulers that
// prefer a one-shot command over the API server's background sweeper.
func (cli *commandLine) sweepReminders() error {
	res, err := cli.remSvc.ProcessDue()
	if err != nil {
		return err
	}
	fmt.Printf("processed %d due reminder(s), sent %d notification(s)\n", res.Processed, res.Sent)
	return nil
}
