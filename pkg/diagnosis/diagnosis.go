// Package diagnosis explains why no roster could be built for a request and
// what to change.
package diagnosis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/arnavshah/shift-roster-go/pkg/roster"
)

// Kind grades a finding.
type Kind string

const (
	Critical Kind = "critical"
	Warning  Kind = "warning"
	Info     Kind = "info"
	General  Kind = "general"
)

// Finding is one cause with its remedy. Lower Priority is more severe.
type Finding struct {
	Kind       Kind   `json:"type" yaml:"type"`
	Title      string `json:"title" yaml:"title"`
	Message    string `json:"message" yaml:"message"`
	Suggestion string `json:"suggestion" yaml:"suggestion"`
	Priority   int    `json:"priority" yaml:"priority"`
}

// MinBalanceWorkingDays is the number of working days below which the
// Early/Late balance is flagged as tight.
const MinBalanceWorkingDays = 10

// UtilizationLimit is the percentage above which staffing is flagged.
const UtilizationLimit = 85.0

// check inspects a request and returns a finding or nil.
type check func(req *roster.Request) *Finding

var battery = []check{
	checkShortfall,
	checkNakabanExcess,
	checkNewbies,
	checkRequests,
	checkBalanceMargin,
	checkUtilization,
}

// Diagnose runs every check against req at its strictest parameters and
// returns the findings, most severe first. Checks of equal priority keep
// their battery order.
func Diagnose(req *roster.Request) []Finding {
	var findings []Finding
	for _, c := range battery {
		if f := c(req); f != nil {
			findings = append(findings, *f)
		}
	}
	if len(findings) == 0 {
		findings = append(findings, fallback(req))
	}
	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].Priority < findings[j].Priority
	})
	return findings
}

func checkShortfall(req *roster.Request) *Finding {
	st := req.Staffing
	need := st.MinDaily()
	have := len(req.Staff)
	if have >= need {
		return nil
	}
	return &Finding{
		Kind:       Critical,
		Title:      "❌ スタッフ数が絶対的に不足しています",
		Message:    fmt.Sprintf("現在: %d名 → 必要: 最低%d名（早番%d名 + 中番%d名 + 遅番%d名）", have, need, st.Early, st.Middle, st.LateMin),
		Suggestion: fmt.Sprintf("✅ スタッフを%d名以上追加してください", need-have),
		Priority:   1,
	}
}

func checkNakabanExcess(req *roster.Request) *Finding {
	n := req.NakabanOnlyCount()
	middle := req.Staffing.Middle
	if n <= middle {
		return nil
	}
	excess := n - middle
	return &Finding{
		Kind:    Critical,
		Title:   "❌ 中番専任スタッフが多すぎます",
		Message: fmt.Sprintf("中番専任: %d名 → 中番の必要人数: %d名\n余剰: %d名", n, middle, excess),
		Suggestion: fmt.Sprintf("✅ 以下のいずれかを実行してください：\n  1. 中番専任を%d名減らす（推奨）\n  2. 中番の必要人数を%d名に増やす",
			excess, n),
		Priority: 1,
	}
}

func checkNewbies(req *roster.Request) *Finding {
	n := len(req.Newbies())
	if n < 3 {
		return nil
	}
	return &Finding{
		Kind:    Warning,
		Title:   "⚠️ 新人が多すぎます",
		Message: fmt.Sprintf("新人: %d名 / 全体: %d名\n新人同士は同一シフト勤務できないため、シフトが組みにくくなります。", n, len(req.Staff)),
		Suggestion: fmt.Sprintf("✅ 以下のいずれかを実行してください：\n  1. 新人を2名以下に減らす（推奨）\n  2. スタッフ数を%d名以上に増やす",
			len(req.Staff)+2),
		Priority: 2,
	}
}

func checkRequests(req *roster.Request) *Finding {
	var over []string
	for _, st := range req.Staff {
		total := req.RequestCount(st.ID)
		if total > roster.MaxRequestsPerStaff {
			over = append(over, fmt.Sprintf("%s（%d件 → %d件オーバー）", st.Name, total, total-roster.MaxRequestsPerStaff))
		}
	}
	if len(over) == 0 {
		return nil
	}
	return &Finding{
		Kind:  Warning,
		Title: "⚠️ 希望が多すぎるスタッフがいます",
		Message: fmt.Sprintf("希望休+希望シフトは合計%d日までです。\n該当スタッフ: %d名\n・ %s",
			roster.MaxRequestsPerStaff, len(over), strings.Join(over, "\n・ ")),
		Suggestion: fmt.Sprintf("✅ 各スタッフの希望を%d件以内に減らしてください", roster.MaxRequestsPerStaff),
		Priority:   2,
	}
}

func checkBalanceMargin(req *roster.Request) *Finding {
	if len(req.Staff)-req.NakabanOnlyCount() <= 0 {
		return nil
	}
	cal := req.Calendar
	working := cal.WorkingDays()
	if working >= MinBalanceWorkingDays {
		return nil
	}
	return &Finding{
		Kind:  Info,
		Title: "ℹ️ 早番・遅番バランス制約が厳しい可能性",
		Message: fmt.Sprintf("勤務日数: %d日（1ヶ月%d日 - 休日%d日）\n早番と遅番を均等に振り分けるには、十分な勤務日数が必要です。",
			working, cal.NumDays(), cal.TargetOffDays()),
		Suggestion: fmt.Sprintf("✅ 休日を%d日に減らすことを検討してください", cal.TargetOffDays()-1),
		Priority:   3,
	}
}

// Utilization is the share of available shifts the minimum daily staffing
// consumes, in percent.
func Utilization(req *roster.Request) (pct float64, needed, available int) {
	working := req.Calendar.WorkingDays()
	needed = working * req.Staffing.MinDaily()
	available = len(req.Staff) * working
	if available <= 0 {
		return 0, needed, available
	}
	return float64(needed) / float64(available) * 100, needed, available
}

func checkUtilization(req *roster.Request) *Finding {
	pct, needed, available := Utilization(req)
	if pct <= UtilizationLimit {
		return nil
	}
	return &Finding{
		Kind:  Warning,
		Title: "⚠️ 制約の余裕が少なすぎます",
		Message: fmt.Sprintf("シフト充足率: %.1f%%\n必要シフト数: %d\n利用可能シフト数: %d\n余裕率: %.1f%%（推奨: 20%%以上）",
			pct, needed, available, 100-pct),
		Suggestion: fmt.Sprintf("✅ 以下のいずれかを実行してください：\n  1. スタッフを1-2名追加する（推奨）\n  2. 遅番の最小人数を%d名に減らす\n  3. 希望休・希望シフトを全体的に減らす",
			req.Staffing.LateMin-1),
		Priority: 2,
	}
}

func fallback(req *roster.Request) Finding {
	st := req.Staffing
	cal := req.Calendar
	return Finding{
		Kind:  General,
		Title: "⚠️ 制約条件が厳しすぎます",
		Message: fmt.Sprintf("以下の現状を確認してください：\n・ スタッフ数: %d名\n・ 必要人数: 早番%d名、中番%d名、遅番%d-%d名\n・ 新人: %d名、中番専任: %d名\n・ 勤務日数: %d日、休日: %d日",
			len(req.Staff), st.Early, st.Middle, st.LateMin, st.LateMax,
			len(req.Newbies()), req.NakabanOnlyCount(),
			cal.WorkingDays(), cal.TargetOffDays()),
		Suggestion: "✅ 以下を試してください（優先順）：\n  1. スタッフを1-2名追加する\n  2. 希望休・希望シフトを減らす（各スタッフ2件以内）\n  3. 新人を2名以下に減らす\n  4. 中番専任を減らす\n  5. 遅番の最小人数を減らす",
		Priority:   3,
	}
}
