// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package tui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teradata-labs/bobbin/pkg/config"
	"github.com/teradata-labs/bobbin/pkg/conversation"
	"github.com/teradata-labs/bobbin/pkg/conversation/convtest"
)

func intPtr(i int) *int { return &i }

func TestRoundRobinRouting(t *testing.T) {
	t.Run("wraps and stays deterministic", func(t *testing.T) {
		app := newTestApp(t, convtest.NewFakeManager())
		app.team = &TeamContext{Name: "trio", Members: []string{"a", "b", "c"}, Mode: "round_robin", NextIdx: 2}

		var dispatched []string
		for _, input := range []string{"1", "2", "3"} {
			msgs := collectMsgs(app.handleOp(userInputMsg(input)))
			require.Len(t, msgs, 1)
			sw, ok := msgs[0].(SwitchToAgentMsg)
			require.True(t, ok)
			assert.Equal(t, input, sw.InitialPrompt)
			dispatched = append(dispatched, sw.Name)
		}

		assert.Equal(t, []string{"c", "a", "b"}, dispatched)
		assert.Equal(t, 2, app.team.NextIdx)
		assert.Equal(t, 3, app.team.TurnsTaken)
		assert.Equal(t, "b", app.team.LastSpeaker)
	})

	t.Run("selection is fair over many turns", func(t *testing.T) {
		app := newTestApp(t, convtest.NewFakeManager())
		app.team = &TeamContext{Name: "duo", Members: []string{"a", "b"}, Mode: "round_robin"}

		counts := map[string]int{}
		for i := 0; i < 7; i++ {
			msgs := collectMsgs(app.handleOp(userInputMsg("go")))
			require.Len(t, msgs, 1)
			counts[msgs[0].(SwitchToAgentMsg).Name]++
		}
		assert.Equal(t, 4, counts["a"])
		assert.Equal(t, 3, counts["b"])
	})

	t.Run("no members is reported", func(t *testing.T) {
		app := newTestApp(t, convtest.NewFakeManager())
		app.team = &TeamContext{Name: "empty", Mode: "round_robin"}

		require.Nil(t, collectMsgs(app.handleOp(userInputMsg("go"))))
		assert.True(t, historyContains(app, "team empty has no members"))
	})
}

func TestMaxTurnsGate(t *testing.T) {
	app := newTestApp(t, convtest.NewFakeManager())
	app.team = &TeamContext{Name: "solo", Members: []string{"a"}, Mode: "round_robin", MaxTurns: intPtr(1)}

	msgs := collectMsgs(app.handleOp(userInputMsg("first")))
	require.Len(t, msgs, 1)

	msgs = collectMsgs(app.handleOp(userInputMsg("second")))
	assert.Empty(t, msgs, "no dispatch past max_turns")
	assert.True(t, historyContains(app, "team solo reached max_turns=1"))
	assert.Equal(t, 1, app.team.TurnsTaken)
}

func TestExplicitTagBypass(t *testing.T) {
	mgr := convtest.NewFakeManager()
	app := newTestApp(t, mgr)
	app.team = &TeamContext{Name: "duo", Members: []string{"a", "b"}, Mode: "round_robin"}

	view, err := newSessionView(app.ctx, mgr, (&config.ProjectFile{}).BaseConfig(), "dev", "", app.Send)
	require.NoError(t, err)
	app.view = view

	original := "  @dev please fix this"
	require.Nil(t, collectMsgs(app.handleOp(userInputMsg(original))))

	// Forwarded unmodified to the active widget, not routed.
	assert.Eventually(t, func() bool {
		ops := mgr.Conversations()[0].Ops()
		if len(ops) != 1 {
			return false
		}
		in, ok := ops[0].(conversation.UserInput)
		if !ok {
			return false
		}
		text, _ := conversation.FirstText(in)
		return text == original
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, app.team.TurnsTaken)
}

func TestSelectorRouting(t *testing.T) {
	t.Run("missing model is reported", func(t *testing.T) {
		app := newTestApp(t, convtest.NewFakeManager())
		app.team = &TeamContext{Name: "squad", Members: []string{"a", "b"}, Mode: "selector"}

		require.Nil(t, collectMsgs(app.handleOp(userInputMsg("go"))))
		assert.True(t, historyContains(app, "selector model not configured"))
	})

	t.Run("routes to the selector's choice", func(t *testing.T) {
		mgr := convtest.NewFakeManager()
		mgr.Reply = func(cfg *config.Config, input string) string { return "b\n" }
		app := newTestApp(t, mgr)
		app.team = &TeamContext{
			Name:          "squad",
			Members:       []string{"a", "b"},
			Mode:          "Selector", // mode matching is case-insensitive
			SelectorModel: "claude-haiku-4-5",
			LastSpeaker:   "a",
		}

		require.Nil(t, collectMsgs(app.handleOp(userInputMsg("do X"))))

		result := waitMsg[selectorResultMsg](t, app)
		assert.Equal(t, "b", result.candidate, "selector replies are trimmed")
		assert.Equal(t, "do X", result.userMessage)

		// The auxiliary conversation reuses the base config with only the
		// model swapped, and receives the exact selector prompt.
		convs := mgr.Conversations()
		require.Len(t, convs, 1)
		assert.Equal(t, "claude-haiku-4-5", convs[0].Config().Model)

		in, ok := convs[0].Ops()[0].(conversation.UserInput)
		require.True(t, ok)
		prompt, _ := conversation.FirstText(in)
		expected := DefaultSelectorPrompt + `

Team: squad
User Message:
do X

Candidates:
- a
- b

Policy:
- Do not choose the same speaker twice in a row.
- The last speaker was: a

Answer with exactly one candidate name from the list above.`
		assert.Equal(t, expected, prompt)

		msgs := collectMsgs(app.handleSelectorResult(result))
		require.Len(t, msgs, 1)
		assert.Equal(t, SwitchToAgentMsg{Name: "b", InitialPrompt: "do X"}, msgs[0])
		assert.Equal(t, 1, app.team.TurnsTaken)
		assert.Equal(t, "b", app.team.LastSpeaker)
	})

	t.Run("no choice is reported", func(t *testing.T) {
		mgr := convtest.NewFakeManager()
		mgr.Reply = func(*config.Config, string) string { return "" }
		app := newTestApp(t, mgr)
		app.team = &TeamContext{Name: "squad", Members: []string{"a"}, Mode: "selector", SelectorModel: "m"}

		require.Nil(t, collectMsgs(app.handleOp(userInputMsg("go"))))
		result := waitMsg[selectorResultMsg](t, app)
		require.Nil(t, collectMsgs(app.handleSelectorResult(result)))
		assert.True(t, historyContains(app, "selector returned no choice"))
	})

	t.Run("repeated speaker allowed drops the policy line", func(t *testing.T) {
		ctx := &TeamContext{Name: "squad", Members: []string{"a"}, Mode: "selector", AllowRepeatedSpeaker: true}
		prompt := buildSelectorPrompt(ctx, "hello")
		assert.NotContains(t, prompt, "twice in a row")
		assert.NotContains(t, prompt, "last speaker")
	})
}
