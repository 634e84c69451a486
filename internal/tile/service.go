package tile

// Service renders and encodes tiles in one step.
type Service struct {
	renderer *Renderer
	encoder  *Encoder
}

func NewService(renderer *Renderer, encoder *Encoder) *Service {
	return &Service{renderer: renderer, encoder: encoder}
}

// Tile returns the encoded image for addr.
func (s *Service) Tile(addr Address) ([]byte, error) {
	return s.encoder.EncodeBytes(s.renderer.Render(addr))
}

// ContentType is the MIME type of the bytes Tile returns.
func (s *Service) ContentType() string {
	return s.encoder.Format().ContentType()
}
