package schedule

// VenuesForDay returns the venues permitted on a day, in display order.
// Venues without a permitted-day set are permitted on every day.
func (s *Snapshot) VenuesForDay(dayID string) []Venue {
	var venues []Venue
	for _, v := range s.Venues() {
		if v.PermitsDay(dayID) {
			venues = append(venues, v)
		}
	}
	return venues
}
