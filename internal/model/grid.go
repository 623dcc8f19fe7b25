package model

// Grid dimensions. A site has 26 blocks lettered A..Z, each with 7 floors.
const (
	BlockCount     = 26
	FloorsPerBlock = 7
)

// Floors holds the completion flag of each floor in one block, indexed 0..6.
//
// A fixed-size array (not a slice) makes "exactly 7 floors" a property of
// the type: there is no way to build a Floors value with 6 or 8 entries.
type Floors [FloorsPerBlock]bool

// Complete reports whether every floor in the block is done.
func (f Floors) Complete() bool {
	for _, done := range f {
		if !done {
			return false
		}
	}
	return true
}

// Count returns how many floors are done.
func (f Floors) Count() int {
	n := 0
	for _, done := range f {
		if done {
			n++
		}
	}
	return n
}

// Grid maps a block letter to its floors. A Grid built with NewGrid always
// has exactly BlockCount keys; callers must check ValidBlock before writing
// a key that came from user input.
type Grid map[string]Floors

// NewGrid returns a grid with every block present and every floor incomplete.
func NewGrid() Grid {
	g := make(Grid, BlockCount)
	for _, b := range Blocks() {
		g[b] = Floors{}
	}
	return g
}

// Blocks returns the block letters in order: "A", "B", ..., "Z".
func Blocks() []string {
	blocks := make([]string, BlockCount)
	for i := range blocks {
		blocks[i] = string(rune('A' + i))
	}
	return blocks
}

// ValidBlock reports whether b names one of the 26 blocks. Matching is
// case-sensitive: "a" is not a block.
func ValidBlock(b string) bool {
	return len(b) == 1 && b[0] >= 'A' && b[0] <= 'Z'
}

// BlockView is one dashboard row: a block, its floors and the derived
// completed flag. Templates range over a []BlockView rather than the map so
// the order is stable.
type BlockView struct {
	Block     string
	Floors    Floors
	Completed bool
}

// Rows flattens the grid into A..Z order for rendering.
func (g Grid) Rows() []BlockView {
	rows := make([]BlockView, 0, BlockCount)
	for _, b := range Blocks() {
		f := g[b]
		rows = append(rows, BlockView{Block: b, Floors: f, Completed: f.Complete()})
	}
	return rows
}

// ExportRow is one line of the spreadsheet export: the state of a single
// (block, floor) pair for a user.
type ExportRow struct {
	Username  string
	Block     string
	Floor     int
	Completed bool
}

// ExportRows denormalizes the grid into one row per (block, floor), ordered
// by block then floor. A full grid always yields BlockCount*FloorsPerBlock rows.
func (g Grid) ExportRows(username string) []ExportRow {
	rows := make([]ExportRow, 0, BlockCount*FloorsPerBlock)
	for _, b := range Blocks() {
		for i, done := range g[b] {
			rows = append(rows, ExportRow{
				Username:  username,
				Block:     b,
				Floor:     i,
				Completed: done,
			})
		}
	}
	return rows
}

// BlockSummary is one line of the progress report.
type BlockSummary struct {
	Block           string
	CompletedFloors int
	Percent         int
}
