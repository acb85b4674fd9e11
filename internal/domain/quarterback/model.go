package quarterback

import (
	"fmt"
	"strings"
)

// StatusStarter marks a quarterback eligible for formation selection.
const StatusStarter = "Titolare"

// Quarterback is a selectable player in the league pool.
type Quarterback struct {
	ID     string
	Name   string
	Team   string
	Status string
}

func (q Quarterback) IsStarter() bool {
	return strings.EqualFold(strings.TrimSpace(q.Status), StatusStarter)
}

func (q Quarterback) Validate() error {
	if strings.TrimSpace(q.ID) == "" {
		return fmt.Errorf("quarterback id is required")
	}
	if strings.TrimSpace(q.Name) == "" {
		return fmt.Errorf("quarterback name is required")
	}
	return nil
}
