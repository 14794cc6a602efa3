package pipeline

import (
	"fmt"
	"log"
)

type runlog struct {
	id    string
	debug bool
}

func (l runlog) debugf(format string, args ...any) {
	if l.debug {
		log.Printf("%-5s %v  %s", "DEBUG", l.id, fmt.Sprintf(format, args...))
	}
}

func (l runlog) infof(format string, args ...any) {
	log.Printf("%-5s %v  %s", "INFO", l.id, fmt.Sprintf(format, args...))
}

func (l runlog) warnf(format string, args ...any) {
	log.Printf("%-5s %v  %s", "WARN", l.id, fmt.Sprintf(format, args...))
}
