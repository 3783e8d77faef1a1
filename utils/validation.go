package utils

import (
	"encoding/json"
	"net/http"

	validatorv10 "github.com/go-playground/validator/v10"
)

// NewValidator returns the shared request validator.
func NewValidator() *validatorv10.Validate {
	return validatorv10.New()
}

// BindAndValidate binds the JSON body into out and runs validation. If either
// step fails it writes a 400 response and returns an error for the handler to
// short-circuit.
func BindAndValidate(w http.ResponseWriter, r *http.Request, v *validatorv10.Validate, out interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid request body"})
		return err
	}

	if err := v.Struct(out); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error":  "validation failed",
			"fields": validationErrorsToMap(err),
		})
		return err
	}
	return nil
}

func validationErrorsToMap(err error) map[string]string {
	out := map[string]string{}
	if ve, ok := err.(validatorv10.ValidationErrors); ok {
		for _, fe := range ve {
			out[fe.StructNamespace()] = fe.Error()
		}
	} else {
		out["error"] = err.Error()
	}
	return out
}
