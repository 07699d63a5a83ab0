package sim

import (
	"github.com/go-gl/mathgl/mgl32"
)

// ObjectID is the stable identity of a world object. IDs are unique across kinds.
type ObjectID uint32

// ModelType identifies the model format family an object's model was loaded from.
type ModelType int

const (
	ModelType3DO ModelType = iota
	ModelTypeS3O
	ModelTypeOBJ
	ModelTypeASS
	ModelTypeOther
)

// ModelTypes lists the families with a dedicated renderer, in draw order.
var ModelTypes = []ModelType{ModelType3DO, ModelTypeS3O, ModelTypeOBJ, ModelTypeASS}

func (t ModelType) String() string {
	switch t {
	case ModelType3DO:
		return "3do"
	case ModelTypeS3O:
		return "s3o"
	case ModelTypeOBJ:
		return "obj"
	case ModelTypeASS:
		return "ass"
	default:
		return "other"
	}
}

// Model is the shared, loaded model an object draws with.
type Model struct {
	Name string
	Type ModelType
	// TextureType selects the bin inside a family renderer. Models sharing
	// a texture set share a bin.
	TextureType int
}

// Kind is the category of a drawable world object.
type Kind int

const (
	KindUnit Kind = iota
	KindFeature
	KindProjectile
)

func (k Kind) String() string {
	switch k {
	case KindUnit:
		return "unit"
	case KindFeature:
		return "feature"
	case KindProjectile:
		return "projectile"
	}
	return "unknown"
}

// Unit is a mobile unit.
type Unit struct {
	ID      ObjectID
	Model   *Model
	Pos     mgl32.Vec3
	Heading float32 // radians around +Y
	Dead    bool
}

// Feature is a static map feature (trees, wrecks, rocks).
type Feature struct {
	ID      ObjectID
	Model   *Model
	Pos     mgl32.Vec3
	Heading float32
	// Alpha is the current fade in [0,1]. Fully faded features are removed.
	Alpha float32
	// FadeRate is alpha lost per second; zero means the feature never fades.
	FadeRate float32
	Dead     bool
}

// Projectile is a model-based projectile in flight.
type Projectile struct {
	ID       ObjectID
	Model    *Model
	Pos      mgl32.Vec3
	Heading  float32
	Velocity mgl32.Vec3
	// TTL is remaining lifetime in seconds.
	TTL  float64
	Dead bool
}

// Transform returns the model-to-world matrix for an object at pos facing heading.
func Transform(pos mgl32.Vec3, heading float32) mgl32.Mat4 {
	return mgl32.Translate3D(pos.X(), pos.Y(), pos.Z()).Mul4(mgl32.HomogRotate3DY(heading))
}
