package main

import (
	"fmt"
	"strings"

	"github.com/example/shineyruler/internal/viewer"
)

type titleOptions struct {
	Count  int
	Extras []string
}

func windowTitle(opts titleOptions) string {
	parts := []string{viewer.ProgramTitle}

	if opts.Count > 1 {
		parts = append(parts, fmt.Sprintf("%d images", opts.Count))
	}

	if strings.TrimSpace(version) != "" {
		parts = append(parts, fmt.Sprintf("v%s", strings.TrimSpace(version)))
	}

	if strings.TrimSpace(commit) != "" {
		parts = append(parts, fmt.Sprintf("commit %s", strings.TrimSpace(commit)))
	}

	if strings.TrimSpace(date) != "" {
		parts = append(parts, strings.TrimSpace(date))
	}

	for _, extra := range opts.Extras {
		if extra = strings.TrimSpace(extra); extra != "" {
			parts = append(parts, extra)
		}
	}

	return strings.Join(parts, " - ")
}
