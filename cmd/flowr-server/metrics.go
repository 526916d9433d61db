package main

import (
	"expvar"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// promMetricsHandler renders known expvar metrics in Prometheus text format.
func promMetricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	// Define metadata for known metrics
	type meta struct {
		typ, help string
		isMap     bool
		label     string
	}
	metas := map[string]meta{
		"flowr_transitions_total":      {typ: "counter", help: "Traversal position advances"},
		"flowr_forks_total":            {typ: "counter", help: "Fork expansions into multiple positions"},
		"flowr_prunes_total":           {typ: "counter", help: "Positions abandoned by pruning"},
		"flowr_states_started_total":   {typ: "counter", help: "Traversals started"},
		"flowr_states_completed_total": {typ: "counter", help: "Traversals that ran out of positions"},
		"flowr_hook_failures_total":    {typ: "counter", help: "Enter/exit hooks that returned an error"},
		"flowr_snapshots_saved_total":  {typ: "counter", help: "Snapshots persisted", isMap: true, label: "backend"},
		"flowr_snapshots_loaded_total": {typ: "counter", help: "Snapshots loaded", isMap: true, label: "backend"},
	}

	// Collect variable names deterministically
	varNames := make([]string, 0, 64)
	expvar.Do(func(kv expvar.KeyValue) {
		varNames = append(varNames, kv.Key)
	})
	sort.Strings(varNames)

	for _, name := range varNames {
		v := expvar.Get(name)
		m, known := metas[name]
		if !known {
			// Minimal rendering: publish as an untyped gauge if numeric
			if iv, ok := v.(*expvar.Int); ok {
				_, _ = fmt.Fprintf(w, "# TYPE %s gauge\n", name)
				_, _ = fmt.Fprintf(w, "%s %s\n", name, iv.String())
			}
			continue
		}
		_, _ = fmt.Fprintf(w, "# HELP %s %s\n", name, sanitizeHelp(m.help))
		_, _ = fmt.Fprintf(w, "# TYPE %s %s\n", name, m.typ)
		if m.isMap {
			mp, ok := v.(*expvar.Map)
			if !ok {
				continue
			}
			// Collect subkeys deterministically
			sub := make([]expvar.KeyValue, 0, 8)
			mp.Do(func(kv expvar.KeyValue) { sub = append(sub, kv) })
			sort.Slice(sub, func(i, j int) bool { return sub[i].Key < sub[j].Key })
			for _, kv := range sub {
				fmt.Fprintf(w, "%s{%s=\"%s\"} %s\n", name, m.label, escapeLabel(kv.Key), kv.Value.String())
			}
		} else {
			fmt.Fprintf(w, "%s %s\n", name, v.String())
		}
	}
}

func sanitizeHelp(s string) string {
	// Replace newlines with spaces to satisfy Prometheus text format
	return strings.ReplaceAll(s, "\n", " ")
}

func escapeLabel(s string) string {
	// Escape backslash, double-quote, and newline per Prometheus format
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
