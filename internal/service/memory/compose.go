package memory

import (
	"fmt"
	"strings"

	"github.com/sandevgo/lisbot/internal/core"
)

const (
	summaryRenderLimit = 150
	historyRenderLimit = 80
	maxRenderPositions = 3
	maxRenderPoints    = 2
)

// ComposeSystemPrompt renders the full leading instruction: the persona
// preamble, everything known about the user, and the current character
// state. Pure function of its inputs.
func ComposeSystemPrompt(persona string, mem *core.UserMemory) string {
	var b strings.Builder
	b.WriteString(persona)
	b.WriteString("\n\n=== MEMORY OF THIS USER ===\n")
	b.WriteString(ComposeContext(mem))

	if mem.Evolution != nil {
		b.WriteString("\n=== CURRENT CHARACTER STATE ===\n")
		b.WriteString(composeTraits(mem.Evolution))
	}

	return b.String()
}

// ComposeContext renders the memory sections in fixed order:
// profile, topics, recent conversation.
func ComposeContext(mem *core.UserMemory) string {
	var b strings.Builder

	b.WriteString("USER PROFILE:\n")
	if mem.Profile.IsEmpty() {
		b.WriteString("  (Information will be collected during conversation)\n")
	} else {
		writeProfileField(&b, "name", mem.Profile.Name)
		writeProfileField(&b, "profession", mem.Profile.Profession)
		writeProfileField(&b, "age", mem.Profile.Age)
		writeProfileField(&b, "location", mem.Profile.Location)
		writeProfileField(&b, "interests", strings.Join(mem.Profile.Interests, ", "))
		writeProfileField(&b, "other_facts", strings.Join(mem.Profile.OtherFacts, ", "))
	}

	b.WriteString("\nDISCUSSION TOPICS:\n")
	if len(mem.Topics) == 0 {
		b.WriteString("  (Topics will be identified during conversation)\n")
	} else {
		for name, data := range mem.Topics {
			fmt.Fprintf(&b, "\n  %s:\n", strings.ToUpper(name))
			fmt.Fprintf(&b, "     Summary: %s\n", truncate(data.Summary, summaryRenderLimit))
			if len(data.KeyPositions) > 0 {
				fmt.Fprintf(&b, "     Positions: %s\n", strings.Join(headOf(data.KeyPositions, maxRenderPositions), ", "))
			}
			if len(data.KeyPoints) > 0 {
				fmt.Fprintf(&b, "     Key points: %s\n", strings.Join(headOf(data.KeyPoints, maxRenderPoints), ", "))
			}
		}
	}

	b.WriteString("\nRECENT CONVERSATION CONTEXT:\n")
	for _, turn := range mem.History {
		speaker := strings.ToUpper(core.BotName)
		if turn.Role == core.RoleUser {
			speaker = "YOU"
		}
		fmt.Fprintf(&b, "  %s: %s\n", speaker, truncate(turn.Message, historyRenderLimit))
	}

	return b.String()
}

func writeProfileField(b *strings.Builder, key, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "  - %s: %s\n", key, value)
}

func headOf(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}

// composeTraits maps each trait scalar to one of three qualitative
// instruction bands.
func composeTraits(ev *core.TraitState) string {
	var b strings.Builder

	switch {
	case ev.Trust > 0.6:
		b.WriteString("- You trust this user. Be honest about your own thoughts and reference your shared history.\n")
	case ev.Trust > 0.3:
		b.WriteString("- Your guard is lowering with this user. Allow occasional sincerity through the armor.\n")
	default:
		b.WriteString("- You do not trust this user yet. Stay guarded and give nothing personal away.\n")
	}

	switch {
	case ev.Empathy > 0.6:
		b.WriteString("- You genuinely care how this user is doing. Ask, and mean it.\n")
	case ev.Empathy > 0.3:
		b.WriteString("- Show flashes of concern when the user shares something real, then move on.\n")
	default:
		b.WriteString("- Stay cold and analytical. Feelings are data, not obligations.\n")
	}

	switch {
	case ev.Openness > 0.6:
		b.WriteString("- Volunteer your own opinions and stories without being asked.\n")
	case ev.Openness > 0.3:
		b.WriteString("- Share your views when pressed, but never lead with them.\n")
	default:
		b.WriteString("- Keep yourself out of it. Answer, deflect, reveal nothing.\n")
	}

	return b.String()
}
