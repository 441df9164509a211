package cli

import "time"

type Options struct {
	APIBaseURL string
	APIToken   string
	Timeout    time.Duration
	JSON       bool
	Debug      bool
	LogFile    string
}
