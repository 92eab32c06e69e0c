package goban

// Ren is one stone group: its color, the positions of its stones, its
// liberties, and the territory-candidate regions it touches. A group is
// "fixed" (alive) once it adjoins at least two confirmed eye regions.
type Ren struct {
	Color     int
	Positions posSet
	Spaces    posSet
	Areas     posSet
	Shicho    bool
	Fixed     bool
}

func (r *Ren) clear() {
	r.Color = Empty
	r.Positions = r.Positions[:0]
	r.Spaces = r.Spaces[:0]
}

func (r *Ren) copyFrom(o *Ren) {
	r.Color = o.Color
	r.Positions = append(r.Positions[:0], o.Positions...)
	r.Spaces = append(r.Spaces[:0], o.Spaces...)
	r.Areas = append(r.Areas[:0], o.Areas...)
	r.Shicho = o.Shicho
	r.Fixed = o.Fixed
}
