// Package plantuml renders a machine.Config as a PlantUML state diagram,
// adapted from stateforward-go-hsm/pkg/plantuml — which walked a compiled
// Model's flat embedded.Element namespace — retargeted at the interpreter's
// own declarative Config/StateConfig tree instead.
package plantuml

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/joeblynch/xstate/machine"
)

func idFromPath(path string) string {
	return strings.ReplaceAll(strings.TrimPrefix(path, "/"), "/", ".")
}

// Generate writes a PlantUML state diagram for cfg to w.
func Generate(w io.Writer, cfg machine.Config) error {
	var b strings.Builder
	name := cfg.ID
	if name == "" {
		name = "machine"
	}
	fmt.Fprintf(&b, "@startuml %s\n", name)
	if cfg.Initial != "" {
		fmt.Fprintf(&b, "[*] --> %s\n", idFromPath(cfg.Initial))
	}
	generateStates(&b, 1, "/", cfg.States)
	fmt.Fprintln(&b, "@enduml")
	_, err := w.Write([]byte(b.String()))
	return err
}

func generateStates(b *strings.Builder, depth int, parent string, states map[string]*machine.StateConfig) {
	names := sortedNames(states)
	for _, name := range names {
		generateState(b, depth, joinPath(parent, name), states[name])
	}
}

func sortedNames(states map[string]*machine.StateConfig) []string {
	names := make([]string, 0, len(states))
	for name := range states {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func joinPath(parent, name string) string {
	if parent == "/" {
		return "/" + name
	}
	return parent + "/" + name
}

func generateState(b *strings.Builder, depth int, path string, cfg *machine.StateConfig) {
	id := idFromPath(path)
	indent := strings.Repeat("  ", depth)
	composite := len(cfg.States) > 0

	if composite {
		fmt.Fprintf(b, "%sstate %s {\n", indent, id)
		if cfg.Initial != "" {
			fmt.Fprintf(b, "%s  [*] --> %s\n", indent, idFromPath(joinPath(path, cfg.Initial)))
		}
		generateStates(b, depth+1, path, cfg.States)
		fmt.Fprintf(b, "%s}\n", indent)
	} else if cfg.Type == "final" {
		fmt.Fprintf(b, "%sstate %s <<end>>\n", indent, id)
	} else {
		fmt.Fprintf(b, "%sstate %s\n", indent, id)
	}

	generateAnnotations(b, indent, id, cfg)
	generateTransitions(b, indent, id, cfg.On, false)
	for delay, candidates := range cfg.After {
		generateTransitionSet(b, indent, id, "after "+delay, candidates)
	}
}

func generateAnnotations(b *strings.Builder, indent, id string, cfg *machine.StateConfig) {
	if len(cfg.Entry) > 0 {
		fmt.Fprintf(b, "%sstate %s: entry / %s\n", indent, id, strings.Join(cfg.Entry, ", "))
	}
	if len(cfg.Activities) > 0 {
		fmt.Fprintf(b, "%sstate %s: activity / %s\n", indent, id, strings.Join(cfg.Activities, ", "))
	}
	if cfg.Invoke != nil {
		fmt.Fprintf(b, "%sstate %s: invoke / %s\n", indent, id, cfg.Invoke.Src)
	}
	if len(cfg.Exit) > 0 {
		fmt.Fprintf(b, "%sstate %s: exit / %s\n", indent, id, strings.Join(cfg.Exit, ", "))
	}
}

func generateTransitions(b *strings.Builder, indent, id string, on map[string][]machine.TransitionConfig, _ bool) {
	events := make([]string, 0, len(on))
	for evt := range on {
		events = append(events, evt)
	}
	sort.Strings(events)
	for _, evt := range events {
		generateTransitionSet(b, indent, id, evt, on[evt])
	}
}

func generateTransitionSet(b *strings.Builder, indent, id, label string, candidates []machine.TransitionConfig) {
	for _, tc := range candidates {
		text := label
		if tc.Cond != "" {
			text = fmt.Sprintf("%s [%s]", text, tc.Cond)
		}
		if len(tc.Actions) > 0 {
			text = fmt.Sprintf("%s / %s", text, strings.Join(tc.Actions, ", "))
		}
		if tc.Target == "" {
			fmt.Fprintf(b, "%sstate %s: %s\n", indent, id, text)
			continue
		}
		fmt.Fprintf(b, "%s%s --> %s : %s\n", indent, id, idFromPath(tc.Target), text)
	}
}
