package scheduler

import "fmt"

// Profile is one rung of the relaxation ladder.
type Profile struct {
	BalanceSlack       int
	SoftenPreferences  bool
	ExtendConsecutive  bool
	AllowLateThenEarly bool
	Description        string
}

// Relaxed reports whether p loosens anything.
func (p Profile) Relaxed() bool {
	return p.BalanceSlack > 0 || p.SoftenPreferences || p.ExtendConsecutive || p.AllowLateThenEarly
}

// MaxConsecutive is the longest run of working days p allows.
func (p Profile) MaxConsecutive() int {
	if p.ExtendConsecutive {
		return 4
	}
	return 3
}

func (p Profile) String() string {
	return fmt.Sprintf("(%d,%t,%t,%t)", p.BalanceSlack, p.SoftenPreferences, p.ExtendConsecutive, p.AllowLateThenEarly)
}

// ladder is tried top to bottom. Entries 9 and 12 are the same profile and
// both are attempted.
var ladder = []Profile{
	{0, false, false, false, "通常モード（制約緩和なし）"},
	{1, false, false, false, "バランス+1日緩和"},
	{2, false, false, false, "バランス+2日緩和"},
	{0, true, false, false, "希望シフトをソフト制約化"},
	{1, true, false, false, "バランス+1日 + 希望シフトソフト化"},
	{2, true, false, false, "バランス+2日 + 希望シフトソフト化"},
	{0, false, true, false, "連続勤務を4日まで緩和"},
	{1, false, true, false, "バランス+1日 + 連続勤務緩和"},
	{2, true, true, false, "バランス+2日 + 希望ソフト + 連続緩和"},
	{0, false, false, true, "遅番→早番制約を緩和"},
	{1, true, false, true, "バランス+1日 + 希望ソフト + 遅番→早番緩和"},
	{2, true, true, false, "バランス+2日 + 希望ソフト + 連続緩和"},
	{3, true, true, false, "バランス+3日 + 希望ソフト + 連続緩和"},
	{2, true, true, true, "バランス+2日 + 希望ソフト + 連続緩和 + 遅番→早番緩和"},
	{3, true, true, true, "バランス+3日 + 希望ソフト + 連続緩和 + 遅番→早番緩和"},
	{4, true, true, true, "最大緩和（バランス+4日 + すべての制約緩和）"},
}

// Ladder returns a copy of the relaxation ladder in attempt order.
func Ladder() []Profile {
	out := make([]Profile, len(ladder))
	copy(out, ladder)
	return out
}

// Strictest is the first profile of the ladder.
func Strictest() Profile { return ladder[0] }
