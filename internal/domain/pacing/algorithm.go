package pacing

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/phrazzld/pagepace/internal/domain"
)

// PagesLeftInActiveBooks sums the unread pages of the goal's active books.
// Missing records or books contribute nothing.
func PagesLeftInActiveBooks(g *domain.Goal, lookup domain.Lookup) int {
	total := 0
	for _, id := range g.ActiveBooks {
		active := lookup.ActiveBook(id)
		if active == nil {
			continue
		}
		total += active.PagesLeft(lookup.Book(active.BookID))
	}
	return total
}

// PagesLeftInChosenBooks sums the page counts of the goal's chosen books.
func PagesLeftInChosenBooks(g *domain.Goal, lookup domain.Lookup) int {
	total := 0
	for _, id := range g.ChosenBooks {
		chosen := lookup.ChosenBook(id)
		if chosen == nil {
			continue
		}
		if book := lookup.Book(chosen.BookID); book != nil {
			total += book.PageCount
		}
	}
	return total
}

// PagesLeftInUnknownBooks estimates the pages of books not yet picked,
// using the goal's average page count.
func PagesLeftInUnknownBooks(g *domain.Goal) int {
	unknown := g.NumberOfBooks - g.ChosenBooks.Len() - g.ActiveBooks.Len() - g.ReadBooks.Len()
	if unknown <= 0 {
		return 0
	}
	return unknown * g.AvgPageCount
}

// TotalPagesLeft is the sum of active, chosen and unknown pages.
func TotalPagesLeft(g *domain.Goal, lookup domain.Lookup) int {
	return PagesLeftInActiveBooks(g, lookup) +
		PagesLeftInChosenBooks(g, lookup) +
		PagesLeftInUnknownBooks(g)
}

// PagesToRead returns the pages that must be read before the deadline.
//
// When more books are active than the goal still needs, only booksLeft of
// them count: the total is scaled by booksLeft/activeCount and rounded up.
// With no active books there is nothing to scale and the total is returned.
func PagesToRead(g *domain.Goal, lookup domain.Lookup) int {
	total := TotalPagesLeft(g, lookup)
	return rebalance(total, g.BooksLeft(), g.ActiveBooks.Len())
}

func rebalance(total, booksLeft, activeCount int) int {
	if activeCount == 0 || booksLeft >= activeCount {
		return total
	}
	if booksLeft <= 0 {
		return 0
	}
	return ceilDiv(total*booksLeft, activeCount)
}

// DaysLeft returns the whole calendar days from the day of now until the
// deadline. It is zero on the deadline and negative after it.
func DaysLeft(g *domain.Goal, now time.Time) int {
	return g.Deadline.DaysSince(civil.DateOf(now))
}

// PagesPerDay spreads pagesToRead over daysLeft, rounding up so the daily
// target never falls short of the deadline. daysLeft is raised to
// minDaysLeft first.
func PagesPerDay(pagesToRead, daysLeft, minDaysLeft int) int {
	if pagesToRead <= 0 {
		return 0
	}
	return ceilDiv(pagesToRead, max(daysLeft, minDaysLeft, 1))
}

// PagesLeftToday is the part of today's quota not yet read, within
// [0, pagesPerDay].
func PagesLeftToday(pagesPerDay, pagesReadToday int) int {
	return min(max(pagesPerDay-pagesReadToday, 0), pagesPerDay)
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
