package main

import (
	"encoding/json"
	"fmt"
	"os"
)

// Run implements sessions show: print one recorded session audit file
// as indented JSON.
func (c *SessionsShowCmd) Run(app *appContext) error {
	if app.sessions == nil {
		return fmt.Errorf("session persistence is disabled (storage.persist_sessions)")
	}

	sess, err := app.sessions.Get(c.ID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(sess)
}
