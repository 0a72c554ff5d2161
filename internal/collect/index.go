package collect

import (
	"log/slog"

	"github.com/RoaringBitmap/roaring"

	"github.com/roach88/hitkit/internal/ir"
)

// channelIndex maps a channel to the positions of the source objects on it,
// in collection order. It is rebuilt for every commit.
type channelIndex map[ir.ChannelID][]int

func indexChannels[T any](items []T, channel func(T) ir.ChannelID) channelIndex {
	idx := make(channelIndex, len(items))
	for i, item := range items {
		ch := channel(item)
		idx[ch] = append(idx[ch], i)
	}
	return idx
}

// first returns the first source position on ch.
func (x channelIndex) first(ch ir.ChannelID) (int, bool) {
	pos, ok := x[ch]
	if !ok || len(pos) == 0 {
		return 0, false
	}
	return pos[0], true
}

// shared returns the channels carrying more than one source object.
func (x channelIndex) shared() *roaring.Bitmap {
	bm := roaring.New()
	for ch, pos := range x {
		if len(pos) > 1 {
			bm.Add(uint32(ch))
		}
	}
	return bm
}

// maxListed caps how many channels a warning spells out.
const maxListed = 16

// warnChannels logs one warning for a whole set of channels.
func warnChannels(msg string, channels *roaring.Bitmap, args ...any) {
	if channels.IsEmpty() {
		return
	}
	listed := make([]uint32, 0, maxListed)
	it := channels.Iterator()
	for it.HasNext() && len(listed) < maxListed {
		listed = append(listed, it.Next())
	}
	args = append(args,
		"count", channels.GetCardinality(),
		"channels", listed,
	)
	slog.Warn(msg, args...)
}
