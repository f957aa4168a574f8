package docstore

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(s scanner) (*Document, error) {
	var (
		d    Document
		data []byte
	)
	if err := s.Scan(&d.ID, &d.OwnerID, &data, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	d.Data = data
	return &d, nil
}
