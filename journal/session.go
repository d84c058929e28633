package journal

import (
	"fmt"
	"io"
	"sort"
	"text/template"
	"time"

	"github.com/shopspring/decimal"
)

// Session summarizes one replay run for the org journal.
type Session struct {
	SessionID string
	Source    string
	Created   time.Time
	Start     time.Time
	End       time.Time

	Rows   int
	Traded int
	Wins   int
	Losses int
	Denied map[string]int

	StartCapital decimal.Decimal
	EndCapital   decimal.Decimal
	PeakCapital  decimal.Decimal
	NetPL        decimal.Decimal
	MaxDrawdown  decimal.Decimal

	Halted bool
	Notes  []string
}

type deniedRow struct {
	Code  string
	Count int
}

// DeniedRows returns denial counts sorted by code.
func (s *Session) DeniedRows() []deniedRow {
	out := make([]deniedRow, 0, len(s.Denied))
	for c, n := range s.Denied {
		out = append(out, deniedRow{c, n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

var sessionOrgFuncs = template.FuncMap{
	"pct": func(d decimal.Decimal) string { return d.Shift(2).StringFixed(2) },
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
}

var sessionOrg = template.Must(template.New("session").Funcs(sessionOrgFuncs).Parse(SessionOrgTemplate))

// WriteSessionOrg renders the session as an org-mode block.
func (s *Session) WriteSessionOrg(w io.Writer) error {
	if err := sessionOrg.Execute(w, s); err != nil {
		return fmt.Errorf("render session: %w", err)
	}
	return nil
}

const SessionOrgTemplate = `* SESSION: {{if .Source}}{{.Source}}{{else}}(source?){{end}}
:PROPERTIES:
:SESSION_ID:  {{.SessionID}}
:FIRST_ROW:   {{.Start.UTC.Format "2006-01-02 15:04"}}
:LAST_ROW:    {{.End.UTC.Format "2006-01-02 15:04"}}
:ROWS:        {{.Rows}}
:TRADED:      {{.Traded}}
:WINS:        {{.Wins}}
:LOSSES:      {{.Losses}}
:START_CAP:   {{.StartCapital.StringFixed 2}}
:END_CAP:     {{.EndCapital.StringFixed 2}}
:PEAK_CAP:    {{.PeakCapital.StringFixed 2}}
:NET_PL:      {{.NetPL.StringFixed 2}}
:MAX_DD_PCT:  {{pct .MaxDrawdown}}
:HALTED:      {{if .Halted}}yes{{else}}no{{end}}
:CREATED:     [{{(orTime .Created).Format "2006-01-02 Mon 15:04"}}]
:END:

** Denials
| Code | Count |
|------+-------|
{{- range .DeniedRows }}
| {{.Code}} | {{.Count}} |
{{- end }}
{{- if .Notes }}

** Observations
{{- range .Notes }}
- {{.}}
{{- end }}
{{- end }}
`
