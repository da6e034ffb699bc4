package depot

// maxTickAge bounds how far behind the world tick a stored tick may fall
// before CheckChangeTicks clamps it. Keeping stored ticks within half the
// tick space preserves the signed modular comparison across wraparound.
const maxTickAge uint32 = 1<<31 - 1

// ChangeTicks records when a component slot was last inserted and mutated,
// in world ticks. Inserted is set by insert; Changed is set whenever a
// mutable view hands out the slot.
type ChangeTicks struct {
	Inserted uint32
	Changed  uint32
}

func newChangeTicks(tick uint32) ChangeTicks {
	return ChangeTicks{Inserted: tick, Changed: tick}
}

// tickIsNewer reports whether tick falls in (lastRun, worldTick], using
// signed modular differences so the comparison survives tick wraparound.
func tickIsNewer(tick, lastRun, worldTick uint32) bool {
	return int32(tick-lastRun) > 0 && int32(tick-worldTick) <= 0
}

// clampTick saturates a stored tick into the window ending at worldTick.
func clampTick(tick, worldTick uint32) uint32 {
	if worldTick-tick > maxTickAge {
		return worldTick - maxTickAge
	}
	return tick
}

func (ct *ChangeTicks) check(worldTick uint32) {
	ct.Inserted = clampTick(ct.Inserted, worldTick)
	ct.Changed = clampTick(ct.Changed, worldTick)
}
