package ply

import (
	"strings"
)

// role is the meaning of a property within a vertex or face record.
type role int

const (
	roleNone role = iota
	roleX
	roleY
	roleZ
	roleRed
	roleGreen
	roleBlue
	roleAlpha
	roleNX
	roleNY
	roleNZ
	roleVertexIndices
	roleTextureIndex
	roleTexCoords
	roleTextureU
	roleTextureV
	roleID
	numRoles
)

var vertexScalarRoles = map[string]role{
	"x":         roleX,
	"y":         roleY,
	"z":         roleZ,
	"nx":        roleNX,
	"ny":        roleNY,
	"nz":        roleNZ,
	"texture_u": roleTextureU,
	"texture_v": roleTextureV,
	"id":        roleID,
}

// color channels match by substring so that e.g. diffuse_red is found.
var colorRoles = []struct {
	substr string
	role   role
}{
	{"red", roleRed},
	{"green", roleGreen},
	{"blue", roleBlue},
	{"alpha", roleAlpha},
}

// propertyIndex maps roles to property positions for one element and back. Positions of
// absent roles are -1.
type propertyIndex struct {
	slots [numRoles]int
	roles []role
}

func newPropertyIndex(e *ElementDescriptor) *propertyIndex {
	pi := &propertyIndex{roles: make([]role, len(e.Properties))}
	for i := range pi.slots {
		pi.slots[i] = -1
	}
	assign := func(r role, i int) {
		if r != roleNone && pi.slots[r] < 0 {
			pi.slots[r] = i
			pi.roles[i] = r
		}
	}
	switch e.Kind() {
	case KindVertex:
		for i, p := range e.Properties {
			if p.IsList() {
				continue
			}
			name := strings.ToLower(p.Name)
			if r, ok := vertexScalarRoles[name]; ok {
				assign(r, i)
				continue
			}
			for _, c := range colorRoles {
				if strings.Contains(name, c.substr) {
					assign(c.role, i)
					break
				}
			}
		}
	case KindFace:
		for i, p := range e.Properties {
			name := strings.ToLower(p.Name)
			switch {
			case p.IsList() && (name == "vertex_indices" || name == "vertex_index"):
				assign(roleVertexIndices, i)
			case p.IsList() && name == "texcoord":
				assign(roleTexCoords, i)
			case !p.IsList() && name == "texnumber":
				assign(roleTextureIndex, i)
			}
		}
	case KindEdge, KindOther:
	}
	return pi
}

func (pi *propertyIndex) has(r role) bool {
	return pi.slots[r] >= 0
}

func (pi *propertyIndex) roleAt(i int) role {
	return pi.roles[i]
}
