package memory

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/paddlegame/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.Init(New())
}
