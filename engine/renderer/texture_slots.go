package renderer

// MaxTextureSlots is the number of texture units the renderer exposes.
const MaxTextureSlots = 16

// slotBinding is what one texture unit has bound, one texture per target.
type slotBinding [2]uint32

// textureSlots is the texture unit table: an active unit and per-unit, per-target bindings.
type textureSlots struct {
	active int
	units  [MaxTextureSlots]slotBinding
}

func (s *textureSlots) activate(slot int) bool {
	if slot < 0 || slot >= MaxTextureSlots {
		return false
	}
	s.active = slot
	return true
}

func (s *textureSlots) bind(target TextureTarget, id uint32) {
	s.units[s.active][target] = id
}

func (s *textureSlots) bound(slot int, target TextureTarget) uint32 {
	if slot < 0 || slot >= MaxTextureSlots {
		return 0
	}
	return s.units[slot][target]
}

// forget clears every binding of id, as deleting a bound texture does.
func (s *textureSlots) forget(id uint32) {
	for i := range s.units {
		for t := range s.units[i] {
			if s.units[i][t] == id {
				s.units[i][t] = 0
			}
		}
	}
}
