package plantuml_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblynch/xstate/machine"
	"github.com/joeblynch/xstate/machine/plantuml"
)

func TestGenerateRendersHierarchyAndTransitions(t *testing.T) {
	cfg := machine.Config{
		ID:      "door",
		Initial: "closed",
		States: map[string]*machine.StateConfig{
			"closed": {
				Entry: []string{"lockLights"},
				On: map[string][]machine.TransitionConfig{
					"OPEN": {{Target: "/open", Cond: "isUnlocked", Actions: []string{"chime"}}},
				},
			},
			"open": {
				States: map[string]*machine.StateConfig{
					"ajar":     {},
					"wideOpen": {Type: "final"},
				},
				Initial: "ajar",
			},
		},
	}

	var b strings.Builder
	require.NoError(t, plantuml.Generate(&b, cfg))
	out := b.String()

	assert.True(t, strings.HasPrefix(out, "@startuml door\n"))
	assert.True(t, strings.HasSuffix(out, "@enduml\n"))
	assert.Contains(t, out, "[*] --> closed")
	assert.Contains(t, out, "state open {")
	assert.Contains(t, out, "wideOpen <<end>>")
	assert.Contains(t, out, "closed --> open : OPEN [isUnlocked] / chime")
	assert.Contains(t, out, "state closed: entry / lockLights")
}
