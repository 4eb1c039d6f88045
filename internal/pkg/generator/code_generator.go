package generator

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

type CodeGenerator struct{}

func NewCodeGenerator() *CodeGenerator {
	return &CodeGenerator{}
}

// GenerateSaleNumber produces the receipt identifier stamped on every
// committed sale, unique per store with overwhelming probability.
func (g *CodeGenerator) GenerateSaleNumber(storeName string) string {
	randomBytes := make([]byte, 5)
	if _, err := rand.Read(randomBytes); err != nil {
		return ""
	}
	return fmt.Sprintf("%s-%s", storeName, hex.EncodeToString(randomBytes))
}
