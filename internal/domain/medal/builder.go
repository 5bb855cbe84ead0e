// Package medal normalizes the upstream award records, which arrive
// in several shapes depending on which endpoint emitted them.
package medal

import (
	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/clanwarfare/snapshot/internal/domain/snapshot"
	"github.com/clanwarfare/snapshot/internal/platform/text"
)

// rawMedal covers every field spelling the upstream endpoints use for
// the same award record.
type rawMedal struct {
	ID          *int64 `json:"Id"`
	MedalID     *int64 `json:"MedalId"`
	UnlockID    *int64 `json:"UnlockId"`
	Tier        *int   `json:"Tier"`
	MedalTier   *int   `json:"MedalTier"`
	Name        string `json:"Name"`
	Description string `json:"Description"`
	Count       *int64 `json:"Count"`
	AwardedTo   string `json:"AwardedTo"`
}

func (m rawMedal) id() int64 {
	for _, candidate := range []*int64{m.ID, m.MedalID, m.UnlockID} {
		if candidate != nil && *candidate != 0 {
			return *candidate
		}
	}
	return 0
}

func (m rawMedal) tier() int {
	for _, candidate := range []*int{m.Tier, m.MedalTier} {
		if candidate != nil && *candidate != 0 {
			return *candidate
		}
	}
	return 1
}

// Result is the output of one parse batch.
type Result struct {
	Medals []snapshot.Medal
	// Totals counts awarded records per tier, duplicates included.
	Totals map[int]int
}

// Parse normalizes one raw JSON award list. Records sharing (id,
// ownerType) within the batch collapse into the first occurrence,
// appending their recipient label; records at or below minimumTier
// are discarded. Output order is first-occurrence order.
func Parse(raw []byte, ownerType snapshot.MedalType, minimumTier int) (Result, error) {
	result := Result{
		Medals: []snapshot.Medal{},
		Totals: map[int]int{},
	}
	if len(raw) == 0 {
		return result, nil
	}

	var records []rawMedal
	if err := sonic.Unmarshal(raw, &records); err != nil {
		return Result{}, crerr.Wrap(err, "decode medal list")
	}

	index := make(map[int64]int, len(records))
	for _, record := range records {
		tier := record.tier()
		if tier <= minimumTier {
			continue
		}

		label := text.Decode(record.AwardedTo)
		result.Totals[tier]++

		id := record.id()
		if at, ok := index[id]; ok {
			result.Medals[at].Label = append(result.Medals[at].Label, label)
			continue
		}

		index[id] = len(result.Medals)
		result.Medals = append(result.Medals, snapshot.Medal{
			ID:          id,
			Type:        ownerType,
			Tier:        tier,
			Name:        record.Name,
			Description: record.Description,
			Count:       record.Count,
			Label:       []string{label},
		})
	}

	return result, nil
}
