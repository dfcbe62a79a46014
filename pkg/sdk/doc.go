// Package shoprec embeds the shoprec recommendation engine in a Go program.
//
// The client reads storefront interactions (orders, wishlists, product views)
// straight from the catalog database and ranks products with user-based
// collaborative filtering. When a user cannot be personalized the newest
// products are returned instead.
//
//	client, _ := shoprec.New(ctx, shoprec.WithPostgres(dsn))
//	defer client.Close()
//
//	recs, _ := client.Recommend(ctx, "user-42", 5)
//	for _, p := range recs.Items {
//	    fmt.Println(p.ID, p.Name)
//	}
//
// Results can be cached in Redis with WithCache; cached entries for one user
// are dropped with Invalidate after that user places an order.
package shoprec
