package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"go.viam.com/ply/ply"
	"go.viam.com/ply/pointcloud"
	"go.viam.com/ply/spatialmath"
)

// headerTable renders one row per property of every element in fd.
func headerTable(fd *ply.FileDescriptor) string {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("format %s %s, %d header lines", fd.Format, fd.Version, fd.HeaderLineCount))
	t.AppendHeader(table.Row{"#", "Element", "Count", "Property", "Type"})
	for i, e := range fd.Elements {
		if len(e.Properties) == 0 {
			t.AppendRow(table.Row{i, e.Name, e.Count, "", ""})
			continue
		}
		for j, p := range e.Properties {
			typ := p.Type.String()
			if p.IsList() {
				typ = fmt.Sprintf("list %s %s", p.CountType, p.ValueType)
			}
			if j == 0 {
				t.AppendRow(table.Row{i, e.Name, e.Count, p.Name, typ})
			} else {
				t.AppendRow(table.Row{"", "", "", p.Name, typ})
			}
		}
		t.AppendSeparator()
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
	})
	return t.Render()
}

// writeSummary prints what a decode produced.
func writeSummary(w io.Writer, res *ply.Result) error {
	fd := res.Header
	lines := []string{fmt.Sprintf("classification: %s", res.Classification)}
	for _, c := range fd.Comments {
		lines = append(lines, "comment: "+c)
	}
	for _, o := range fd.ObjInfo {
		lines = append(lines, "obj_info: "+o)
	}
	for _, tex := range fd.Textures {
		resolved := ""
		if !tex.Resolved {
			resolved = " (unresolved)"
		}
		lines = append(lines, fmt.Sprintf("texture %d: %s%s", tex.Index, tex.Path, resolved))
	}

	if res.Points != nil {
		meta := res.Points.MetaData()
		lines = append(lines, fmt.Sprintf("points: %d (%dD)", res.Points.Size(), res.Points.Dimensions()))
		if res.Points.Size() > 0 {
			lines = append(lines, fmt.Sprintf("bounds: x [%g, %g] y [%g, %g] z [%g, %g]",
				meta.MinX, meta.MaxX, meta.MinY, meta.MaxY, meta.MinZ, meta.MaxZ))
			c := pointcloud.CloudCentroid(res.Points)
			lines = append(lines, fmt.Sprintf("centroid: (%.4g, %.4g, %.4g)", c.X, c.Y, c.Z))
		}
		lines = append(lines, fmt.Sprintf("colors: %t, normals: %t", meta.HasColor, meta.HasNormal))
	}

	switch mesh := res.Mesh.(type) {
	case *spatialmath.IndexedTriangleMesh:
		lines = append(lines, fmt.Sprintf("mesh %q: %d triangles", mesh.Label(), len(mesh.Faces())))
		if triangles, err := mesh.ToMesh(); err == nil {
			lines = append(lines, fmt.Sprintf("surface area: %g", triangles.SurfaceArea()))
		}
	case *spatialmath.IndexedMesh:
		lines = append(lines, fmt.Sprintf("mesh %q: %d faces", mesh.Label(), len(mesh.Faces())))
	case nil:
	default:
		lines = append(lines, fmt.Sprintf("mesh: %T", mesh))
	}

	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}
