// Package deliveries persists the local history of sent attachments.
//
// Every send is journaled: delivered rows keep the location and the
// decryption material so the message can be re-sent later, failed rows keep
// the error. Attempts of a delivered row are stored alongside it.
//
//	repo := deliveries.NewSQLiteRepository(db)
//	_ = repo.Create(ctx, d)
//	recent, _ := repo.List(ctx, 20)
package deliveries
