package domain

// UserState is the per-user projection of everything the engine has awarded:
// point totals by category, badges and trophies held, and the derived level
// per category.
type UserState struct {
	UserID           string            `json:"userId"`
	PointsByCategory map[string]int64  `json:"pointsByCategory"`
	Badges           []string          `json:"badges"`
	Trophies         []string          `json:"trophies"`
	LevelByCategory  map[string]string `json:"levelByCategory,omitempty"`
}

// NewUserState returns an empty state for userID.
func NewUserState(userID string) *UserState {
	return &UserState{
		UserID:           userID,
		PointsByCategory: make(map[string]int64),
		Badges:           []string{},
		Trophies:         []string{},
		LevelByCategory:  make(map[string]string),
	}
}

// AddPoints applies a signed delta to the category total.
func (s *UserState) AddPoints(category string, delta int64) {
	if s.PointsByCategory == nil {
		s.PointsByCategory = make(map[string]int64)
	}
	s.PointsByCategory[category] += delta
}

// HasBadge reports whether the user already holds badgeID.
func (s *UserState) HasBadge(badgeID string) bool {
	for _, b := range s.Badges {
		if b == badgeID {
			return true
		}
	}
	return false
}

// GrantBadge adds badgeID to the badge set. Re-granting is a no-op; the
// return value reports whether the set changed.
func (s *UserState) GrantBadge(badgeID string) bool {
	if s.HasBadge(badgeID) {
		return false
	}
	s.Badges = append(s.Badges, badgeID)
	return true
}

// RevokeBadge removes badgeID from the badge set, reporting whether it was
// held.
func (s *UserState) RevokeBadge(badgeID string) bool {
	for i, b := range s.Badges {
		if b == badgeID {
			s.Badges = append(s.Badges[:i], s.Badges[i+1:]...)
			return true
		}
	}
	return false
}

// HasTrophy reports whether the user already holds trophyID.
func (s *UserState) HasTrophy(trophyID string) bool {
	for _, t := range s.Trophies {
		if t == trophyID {
			return true
		}
	}
	return false
}

// GrantTrophy adds trophyID to the trophy set, reporting whether the set
// changed.
func (s *UserState) GrantTrophy(trophyID string) bool {
	if s.HasTrophy(trophyID) {
		return false
	}
	s.Trophies = append(s.Trophies, trophyID)
	return true
}

// SetLevel records the current level for a category.
func (s *UserState) SetLevel(category, levelID string) {
	if s.LevelByCategory == nil {
		s.LevelByCategory = make(map[string]string)
	}
	s.LevelByCategory[category] = levelID
}

// Clone returns a deep copy, used by the dry-run path to preview mutations
// without touching the persisted state.
func (s *UserState) Clone() *UserState {
	c := NewUserState(s.UserID)
	for k, v := range s.PointsByCategory {
		c.PointsByCategory[k] = v
	}
	c.Badges = append(c.Badges, s.Badges...)
	c.Trophies = append(c.Trophies, s.Trophies...)
	for k, v := range s.LevelByCategory {
		c.LevelByCategory[k] = v
	}
	return c
}
