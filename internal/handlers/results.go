package handlers

// Write responses keep the document store acknowledgement shape the web
// client reads.

type InsertResult struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

type UpdateResult struct {
	Acknowledged  bool `json:"acknowledged"`
	MatchedCount  int  `json:"matchedCount"`
	ModifiedCount int  `json:"modifiedCount"`
}

type DeleteResult struct {
	Acknowledged bool `json:"acknowledged"`
	DeletedCount int  `json:"deletedCount"`
}

type MessageResult struct {
	Message string `json:"message"`
	Limit   int    `json:"limit,omitempty"`
}

func inserted(id string) InsertResult {
	return InsertResult{Acknowledged: true, InsertedID: id}
}

func updated(modified int) UpdateResult {
	return UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: modified}
}

func deleted(n int) DeleteResult {
	return DeleteResult{Acknowledged: true, DeletedCount: n}
}
