package inventory

import "fmt"

const seatsPerRow = 10

// SeatGrid derives the canonical seat IDs for a show from its total seat
// count: rows of ten labelled A1..A10, B1.. and so on. The occupied map
// itself accepts arbitrary seat keys (irregular venues override the grid);
// the grid only drives the available-seats listing.
func SeatGrid(totalSeats int) []string {
	if totalSeats <= 0 {
		return nil
	}
	seats := make([]string, 0, totalSeats)
	for i := 0; i < totalSeats; i++ {
		seats = append(seats, fmt.Sprintf("%s%d", rowLabel(i/seatsPerRow), i%seatsPerRow+1))
	}
	return seats
}

// rowLabel turns a row index into spreadsheet-style letters: A..Z, AA, AB...
func rowLabel(row int) string {
	label := ""
	for {
		label = string(rune('A'+row%26)) + label
		row = row/26 - 1
		if row < 0 {
			break
		}
	}
	return label
}
