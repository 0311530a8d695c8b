package barista_test

import (
	"context"
	"fmt"
	"log"

	"github.com/GenAICloudDevOps/AgenticBarista"
	memadapter "github.com/GenAICloudDevOps/AgenticBarista/pkg/adapters/memory"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/domain"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/router"
)

func ExampleNew() {
	assistant := barista.New(nil, nil)
	ctx := context.Background()

	for _, msg := range []string{"add 2 lattes", "confirm"} {
		res, err := assistant.Process(ctx, "session-123", msg)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%s %.2f %d\n", res.Intent, res.Total, len(res.CartState))
	}
	// Output:
	// ORDER 9.72 1
	// CONFIRMATION 9.72 0
}

// ExampleNew_customMenu serves a one-item menu with no tax.
func ExampleNew_customMenu() {
	catalog, err := memadapter.NewCatalog(domain.CatalogItem{
		Key:       "cortado",
		Name:      "Cortado",
		Price:     domain.MoneyFromFloat(3.75),
		Category:  "coffee",
		Available: true,
	})
	if err != nil {
		log.Fatal(err)
	}

	assistant := barista.New(catalog, nil, router.WithTaxRate(0))
	res, err := assistant.Process(context.Background(), "s1", "add 2 cortados")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(res.Intent, res.Total)
	// Output: ORDER 7.5
}
