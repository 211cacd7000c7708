package validator

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type sample struct {
	Name  string    `json:"nombre" validate:"required,max=10"`
	Stock int       `json:"stock" validate:"gte=0"`
	Owner uuid.UUID `json:"owner" validate:"uuid_required"`
}

func TestValidateStruct(t *testing.T) {
	valid := sample{Name: "Agua", Stock: 1, Owner: uuid.New()}
	assert.Empty(t, ValidateStruct(&valid))
	assert.Empty(t, FirstError(&valid))

	errs := ValidateStruct(&sample{Stock: -1})
	if assert.Len(t, errs, 3) {
		assert.Equal(t, "nombre", errs[0].FailedField)
		assert.Equal(t, "required", errs[0].Tag)
		assert.Equal(t, "stock", errs[1].FailedField)
		assert.Equal(t, "gte", errs[1].Tag)
		assert.Equal(t, "0", errs[1].Value)
		assert.Equal(t, "owner", errs[2].FailedField)
	}
}

func TestFirstError(t *testing.T) {
	msg := FirstError(&sample{Name: "un nombre demasiado largo", Owner: uuid.New()})
	assert.Equal(t, "El campo 'nombre' no cumple la regla 'max=10'", msg)
}
