package monitor

import "time"

type Status struct {
	Backend    string    `json:"backend"`
	PostgreSQL bool      `json:"postgresql"`
	Redis      bool      `json:"redis"`
	Bolt       bool      `json:"bolt"`
	LastCheck  time.Time `json:"last_check"`
}
