package model

// Profile is the registration payload for a new account.
type Profile struct {
	Name     string `json:"nombre" validate:"required"`
	Surname  string `json:"apellidos"`
	Email    string `json:"email" validate:"required,contains=@"`
	Phone    string `json:"telefono"`
	Role     Role   `json:"tipo_usuario" validate:"required,oneof=USUARIO ASESOR RESIDENTE"`
	Password string `json:"password" validate:"required,min=4"`
}
