package board

import "github.com/wfunc/blockduel/piece"

// Source is the slice of math/rand used to fill garbage rows.
type Source interface {
	Intn(n int) int
}

// RandomGarbage draws count row descriptors. Each cell is empty with
// probability one half, otherwise holds a uniformly chosen piece marker.
func RandomGarbage(src Source, count int) []string {
	rows := make([]string, count)
	buf := make([]byte, Width)
	for i := 0; i < count; i++ {
		for j := 0; j < Width; j++ {
			if src.Intn(100) >= 50 {
				buf[j] = '0'
			} else {
				buf[j] = byte('1' + src.Intn(piece.Count))
			}
		}
		rows[i] = string(buf)
	}
	return rows
}
