package research

import (
	"fmt"
	"strings"

	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/domain"
)

// StagePriority is the fixed aggregation order. Earlier stages win URL
// dedup conflicts, and their summaries lead the combined text because
// downstream prompting treats earlier text as higher-confidence context.
var StagePriority = []string{
	domain.StageIDSocial,
	domain.StageIDDeepResearch,
	domain.StageIDTranscripts,
}

// Aggregate merges completed stages' source records in priority order,
// deduplicating by URL with first-writer-wins semantics, and concatenates
// their summaries labeled by stage id.
func Aggregate(stages []domain.Stage) ([]domain.SourceRecord, string) {
	ordered := orderByPriority(stages)

	seen := make(map[string]struct{})
	var sources []domain.SourceRecord
	var summary strings.Builder

	for _, st := range ordered {
		if st.Status != domain.StageCompleted {
			continue
		}
		for _, src := range st.Sources {
			if _, dup := seen[src.URL]; dup {
				continue
			}
			seen[src.URL] = struct{}{}
			sources = append(sources, src)
		}
		if text := strings.TrimSpace(st.Summary); text != "" {
			fmt.Fprintf(&summary, "[%s]\n%s\n\n", st.ID, text)
		}
	}

	return sources, strings.TrimSpace(summary.String())
}

// orderByPriority returns stages in declared priority order, with any
// stage outside the priority list appended in slice order.
func orderByPriority(stages []domain.Stage) []domain.Stage {
	ordered := make([]domain.Stage, 0, len(stages))
	taken := make(map[string]struct{}, len(stages))

	for _, id := range StagePriority {
		for _, st := range stages {
			if st.ID == id {
				ordered = append(ordered, st)
				taken[st.ID] = struct{}{}
			}
		}
	}
	for _, st := range stages {
		if _, ok := taken[st.ID]; !ok {
			ordered = append(ordered, st)
		}
	}
	return ordered
}
