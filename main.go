package main

import (
	"context"
	"fmt"
	"log"

	"github.com/meenmo/bondrisk/bond"
	"github.com/meenmo/bondrisk/marketdata"
	"github.com/meenmo/bondrisk/utils"
)

func main() {
	quotes, err := marketdata.StandardQuotes(
		0.0310, 0.0315, 0.0318, 0.0320, // 3M 6M 9M 1Y
		0.0326, 0.0331, 0.0335, 0.0340, // 18M 2Y 30M 3Y
		0.0348, 0.0355, 0.0366, 0.0378, // 4Y 5Y 7Y 10Y
		0.0389, 0.0395, // 15Y 20Y
	)
	if err != nil {
		log.Fatal(err)
	}

	terms := bond.Terms{
		IssueDate:       utils.MustParseDate("2021-03-01"),
		MaturityDate:    utils.MustParseDate("2026-03-01"),
		CouponRate:      0.035,
		CouponFrequency: 2,
		Direction:       bond.Backward,
	}
	b, err := bond.New(terms, quotes)
	if err != nil {
		log.Fatal(err)
	}

	eval := utils.MustParseDate("2021-06-15")
	price, err := b.Price(eval)
	if err != nil {
		log.Fatal(err)
	}
	y, err := b.Yield(eval)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Price: %.6f\n", price)
	fmt.Printf("Yield: %.4f%%  Modified duration: %.4f\n", y.Yield*100, y.ModifiedDuration)

	ladder, err := b.DeltaLadder(context.Background(), eval)
	if err != nil {
		log.Fatal(err)
	}
	for _, rung := range ladder {
		fmt.Printf("Delta %-4s %.8f\n", marketdata.FormatTenor(rung.Tenor), rung.Delta)
	}
}
