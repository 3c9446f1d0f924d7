package mesh

import (
	"github.com/go-gl/gl/v4.1-core/gl"
)

// GPU buffer lifecycle. Buffers are owned by the mesh: they are created
// on first Upload and must be explicitly freed with Release when the
// owning chunk is cleared or rebuilt. None of these functions may be
// called without a current GL context.

const lineStride = 7 // position(3) + color(4)

// Upload synchronizes GPU buffers with the mesh contents. It is a
// no-op when the mesh is already uploaded and clean.
func (m *Mesh) Upload() {
	if m.uploaded && m.gpuVersion == m.version {
		return
	}
	m.uploadQuads()
	m.uploadLines()
	m.uploaded = true
	m.gpuVersion = m.version
}

func (m *Mesh) uploadQuads() {
	verts := m.VertexData()
	idx := m.IndexData()
	m.gpuIndexCount = int32(len(idx))
	if len(verts) == 0 {
		return
	}

	if m.vao == 0 {
		gl.GenVertexArrays(1, &m.vao)
		gl.GenBuffers(1, &m.vbo)
		gl.GenBuffers(1, &m.ebo)

		gl.BindVertexArray(m.vao)
		gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)

		stride := int32(VertexStride * 4)
		offset := 0
		for i, size := range []int32{3, 4, 2, 4, 3, 3} {
			gl.EnableVertexAttribArray(uint32(i))
			gl.VertexAttribPointerWithOffset(uint32(i), size, gl.FLOAT, false, stride, uintptr(offset))
			offset += int(size) * 4
		}
	} else {
		gl.BindVertexArray(m.vao)
		gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	}

	// Re-specify storage only when the buffer grew; otherwise update in place.
	if len(verts) > m.gpuQuadBufCap {
		gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, gl.Ptr(verts), gl.DYNAMIC_DRAW)
		m.gpuQuadBufCap = len(verts)
	} else {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(verts)*4, gl.Ptr(verts))
	}
	if len(idx) > m.gpuIndexBufCap {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(idx)*4, gl.Ptr(idx), gl.DYNAMIC_DRAW)
		m.gpuIndexBufCap = len(idx)
	} else {
		gl.BufferSubData(gl.ELEMENT_ARRAY_BUFFER, 0, len(idx)*4, gl.Ptr(idx))
	}
	gl.BindVertexArray(0)
}

func (m *Mesh) uploadLines() {
	data := m.LineData()
	m.gpuLineVerts = int32(len(data) / lineStride)
	if len(data) == 0 {
		return
	}

	if m.lineVAO == 0 {
		gl.GenVertexArrays(1, &m.lineVAO)
		gl.GenBuffers(1, &m.lineVBO)

		gl.BindVertexArray(m.lineVAO)
		gl.BindBuffer(gl.ARRAY_BUFFER, m.lineVBO)
		stride := int32(lineStride * 4)
		gl.EnableVertexAttribArray(0)
		gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
		gl.EnableVertexAttribArray(1)
		gl.VertexAttribPointerWithOffset(1, 4, gl.FLOAT, false, stride, 12)
	} else {
		gl.BindVertexArray(m.lineVAO)
		gl.BindBuffer(gl.ARRAY_BUFFER, m.lineVBO)
	}

	if len(data) > m.gpuLineBufCap {
		gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.DYNAMIC_DRAW)
		m.gpuLineBufCap = len(data)
	} else {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(data)*4, gl.Ptr(data))
	}
	gl.BindVertexArray(0)
}

// Draw issues the indexed triangle draw for the quad geometry.
func (m *Mesh) Draw() {
	if !m.uploaded || m.gpuIndexCount == 0 || m.vao == 0 {
		return
	}
	gl.BindVertexArray(m.vao)
	gl.DrawElements(gl.TRIANGLES, m.gpuIndexCount, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
}

// DrawLines issues the draw for the debug line buffer.
func (m *Mesh) DrawLines() {
	if !m.uploaded || m.gpuLineVerts == 0 || m.lineVAO == 0 {
		return
	}
	gl.BindVertexArray(m.lineVAO)
	gl.DrawArrays(gl.LINES, 0, m.gpuLineVerts)
	gl.BindVertexArray(0)
}

// Release frees all GPU buffers owned by the mesh. Safe to call on a
// mesh that was never uploaded.
func (m *Mesh) Release() {
	if !m.uploaded && m.vao == 0 && m.lineVAO == 0 {
		return
	}
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
		gl.DeleteBuffers(1, &m.vbo)
		gl.DeleteBuffers(1, &m.ebo)
		m.vao, m.vbo, m.ebo = 0, 0, 0
	}
	if m.lineVAO != 0 {
		gl.DeleteVertexArrays(1, &m.lineVAO)
		gl.DeleteBuffers(1, &m.lineVBO)
		m.lineVAO, m.lineVBO = 0, 0
	}
	m.uploaded = false
	m.gpuQuadBufCap, m.gpuIndexBufCap, m.gpuLineBufCap = 0, 0, 0
	m.gpuIndexCount, m.gpuLineVerts = 0, 0
}
