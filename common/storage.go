package common

import (
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

// SetSerialized serializes data and puts it into contract storage.
func SetSerialized(ctx storage.Context, key any, value any) {
	data := std.Serialize(value)
	storage.Put(ctx, key, data)
}

// GetSerializedInt returns integer put by SetSerialized and a flag telling
// whether the key is present at all. Missing key is reported as zero.
func GetSerializedInt(ctx storage.Context, key any) (int, bool) {
	data := storage.Get(ctx, key)
	if data == nil {
		return 0, false
	}

	return std.Deserialize(data.([]byte)).(int), true
}
